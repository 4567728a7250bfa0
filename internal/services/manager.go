package services

type serviceManager struct {
	session SessionService
	export  ExportService
}

func NewServiceManager(session SessionService, export ExportService) ServiceManager {
	return &serviceManager{session: session, export: export}
}

func (m *serviceManager) Session() SessionService { return m.session }
func (m *serviceManager) Export() ExportService   { return m.export }
