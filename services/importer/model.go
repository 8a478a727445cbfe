package importer

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Kind is the entity type a job imports rows into. The set is closed; every
// kind has exactly one validator and one insert path.
type Kind string

var (
	KindLocations         Kind = "locations"
	KindMachineModels     Kind = "machine-models"
	KindMachines          Kind = "machines"
	KindMaintenanceRanges Kind = "maintenance-ranges"
	KindOperations        Kind = "operations"
)

func ParseKind(s string) (Kind, bool) {
	k := Kind(s)
	switch k {
	case KindLocations, KindMachineModels, KindMachines, KindMaintenanceRanges, KindOperations:
		return k, true
	default:
		return "", false
	}
}

type JobStatus string

var (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// RowError captures one invalid row. Order matches row order and entries are
// never deduplicated.
type RowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

// ImportJob is one queued request to import one uploaded file's rows into one
// entity type for one tenant. Mutated only by the job runner, except for the
// stale-job sweep resetting processing back to pending.
type ImportJob struct {
	ID            string         `gorm:"column:id;primaryKey"`
	TenantID      string         `gorm:"column:tenant_id;index;not null"`
	Type          Kind           `gorm:"column:type;not null"`
	Status        JobStatus      `gorm:"column:status;index;default:'pending'"`
	FileName      string         `gorm:"column:file_name"`
	FileKey       string         `gorm:"column:file_key"`
	FileSize      int64          `gorm:"column:file_size"`
	TotalRows     int            `gorm:"column:total_rows"`
	ProcessedRows int            `gorm:"column:processed_rows"`
	SuccessRows   int            `gorm:"column:success_rows"`
	ErrorRows     int            `gorm:"column:error_rows"`
	Errors        datatypes.JSON `gorm:"column:errors"`
	CreatedAt     time.Time      `gorm:"column:created_at"`
	UpdatedAt     time.Time      `gorm:"column:updated_at"`
	CompletedAt   *time.Time     `gorm:"column:completed_at"`
}

// RowErrors decodes the accumulated error list.
func (j *ImportJob) RowErrors() ([]RowError, error) {
	if len(j.Errors) == 0 {
		return nil, nil
	}
	var out []RowError
	if err := json.Unmarshal(j.Errors, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func marshalRowErrors(errs []RowError) datatypes.JSON {
	if errs == nil {
		errs = []RowError{}
	}
	raw, _ := json.Marshal(errs)
	return datatypes.JSON(raw)
}

// JobResponse is the API shape for an ImportJob, with the error list decoded.
type JobResponse struct {
	ID            string     `json:"id"`
	TenantID      string     `json:"tenantId"`
	Type          Kind       `json:"type"`
	Status        JobStatus  `json:"status"`
	FileName      string     `json:"fileName"`
	FileSize      int64      `json:"fileSize"`
	TotalRows     int        `json:"totalRows"`
	ProcessedRows int        `json:"processedRows"`
	SuccessRows   int        `json:"successRows"`
	ErrorRows     int        `json:"errorRows"`
	Errors        []RowError `json:"errors"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
}

func (j *ImportJob) ToResponse() JobResponse {
	rowErrs, _ := j.RowErrors()
	if rowErrs == nil {
		rowErrs = []RowError{}
	}
	return JobResponse{
		ID:            j.ID,
		TenantID:      j.TenantID,
		Type:          j.Type,
		Status:        j.Status,
		FileName:      j.FileName,
		FileSize:      j.FileSize,
		TotalRows:     j.TotalRows,
		ProcessedRows: j.ProcessedRows,
		SuccessRows:   j.SuccessRows,
		ErrorRows:     j.ErrorRows,
		Errors:        rowErrs,
		CreatedAt:     j.CreatedAt,
		UpdatedAt:     j.UpdatedAt,
		CompletedAt:   j.CompletedAt,
	}
}
