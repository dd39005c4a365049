package model

// Audit actions recorded in the content audit log.
const (
	AuditActionCreate = "CREATE"
	AuditActionUpdate = "UPDATE"
	AuditActionDelete = "DELETE"
)

// Content types used as audit_log.content_type and view-hit resource types.
const (
	ContentTypePost          = "post"
	ContentTypeProduct       = "product"
	ContentTypeCatalog       = "catalog"
	ContentTypeCertification = "certification"
	ContentTypeRecruit       = "recruit"
	ContentTypeGallery       = "gallery"
	ContentTypeUser          = "user"
)

// IP allow-list audit actions, kept distinct from the content audit log.
const (
	IPAuditEnable      = "ENABLE"
	IPAuditDisable     = "DISABLE"
	IPAuditAddEntry    = "ADD"
	IPAuditUpdateEntry = "UPDATE"
	IPAuditDeleteEntry = "DELETE"
)
