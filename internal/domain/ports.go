package domain

// CaptureLoader reads a crawler capture file from disk.
type CaptureLoader interface {
	Load(path string) (*CaptureResult, error)
}

// ConfigLoader loads audit configuration for a working directory.
type ConfigLoader interface {
	Load(dir string) (AuditConfig, error)
}

// AuditHistory persists past audit scores for a working directory.
type AuditHistory interface {
	Save(dir string, entry AuditEntry) error
	Load(dir string) ([]AuditEntry, error)
}
