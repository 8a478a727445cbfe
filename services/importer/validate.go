package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"maintainops/services/location"
	"maintainops/services/machine"
	"maintainops/services/maintenance"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// validator turns rows into domain records, one kind at a time. Reference
// resolution runs against already-persisted records of the same tenant, so a
// row can reference a record created earlier in the same file.
type validator struct {
	locations location.Repository
	models    machine.ModelRepository
	node      *snowflake.Node
}

func newValidator(locations location.Repository, models machine.ModelRepository, node *snowflake.Node) *validator {
	return &validator{
		locations: locations,
		models:    models,
		node:      node,
	}
}

// field returns the trimmed cell value; empty-after-trim counts as absent.
func field(row Row, name string) string {
	return strings.TrimSpace(row[name])
}

func rowError(rowNum int, fieldName, value, message string) *RowError {
	return &RowError{
		Row:     rowNum,
		Field:   fieldName,
		Value:   value,
		Message: message,
	}
}

// requireFields checks required columns in declaration order and reports the
// first missing one.
func requireFields(row Row, rowNum int, names ...string) *RowError {
	for _, name := range names {
		if field(row, name) == "" {
			return rowError(rowNum, name, "", name+" is required")
		}
	}
	return nil
}

// parseProperties decodes an optional JSON object of scalar values. Nested
// objects and arrays are rejected at the boundary.
func parseProperties(raw string) (datatypes.JSON, error) {
	if raw == "" {
		return nil, nil
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, fmt.Errorf("properties must be a JSON object: %w", err)
	}

	for key, value := range decoded {
		switch value.(type) {
		case string, float64, bool:
		default:
			return nil, fmt.Errorf("property %q must be a string, number or boolean", key)
		}
	}

	encoded, err := json.Marshal(decoded)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(encoded), nil
}

func (v *validator) buildLocation(ctx context.Context, tenantID string, row Row, rowNum int) (*location.Location, *RowError, error) {
	if rowErr := requireFields(row, rowNum, "name"); rowErr != nil {
		return nil, rowErr, nil
	}

	name := field(row, "name")

	loc := &location.Location{
		ID:          v.node.Generate().String(),
		TenantID:    tenantID,
		Name:        name,
		Description: field(row, "description"),
		Icon:        field(row, "icon"),
		Path:        name,
	}

	// The parentId column carries the parent's name, not an id. An unknown
	// parent is not an error: the row becomes a root location.
	if parentName := field(row, "parentId"); parentName != "" {
		parent, err := v.locations.GetByName(ctx, tenantID, parentName)
		if err != nil {
			return nil, nil, err
		}
		if parent != nil {
			loc.ParentID = &parent.ID
			loc.Path = location.BuildPath(parent.Path, name)
		}
	}

	return loc, nil, nil
}

func (v *validator) buildMachineModel(ctx context.Context, tenantID string, row Row, rowNum int) (*machine.MachineModel, *RowError, error) {
	if rowErr := requireFields(row, rowNum, "name", "manufacturer", "brand", "year"); rowErr != nil {
		return nil, rowErr, nil
	}

	rawYear := field(row, "year")
	year, err := strconv.ParseFloat(rawYear, 64)
	if err != nil || math.IsNaN(year) || math.IsInf(year, 0) {
		return nil, rowError(rowNum, "year", rawYear, "year must be a finite number"), nil
	}

	rawProps := field(row, "properties")
	props, err := parseProperties(rawProps)
	if err != nil {
		return nil, rowError(rowNum, "properties", rawProps, err.Error()), nil
	}

	return &machine.MachineModel{
		ID:           v.node.Generate().String(),
		TenantID:     tenantID,
		Name:         field(row, "name"),
		Manufacturer: field(row, "manufacturer"),
		Brand:        field(row, "brand"),
		Year:         year,
		Properties:   props,
	}, nil, nil
}

func (v *validator) buildMachine(ctx context.Context, tenantID string, row Row, rowNum int) (*machine.Machine, *RowError, error) {
	if rowErr := requireFields(row, rowNum, "model", "location"); rowErr != nil {
		return nil, rowErr, nil
	}

	modelName := field(row, "model")
	model, err := v.models.GetByName(ctx, tenantID, modelName)
	if err != nil {
		return nil, nil, err
	}
	if model == nil {
		return nil, rowError(rowNum, "model", modelName, "machine model not found"), nil
	}

	locationPath := field(row, "location")
	loc, err := v.locations.GetByPath(ctx, tenantID, locationPath)
	if err != nil {
		return nil, nil, err
	}
	if loc == nil {
		return nil, rowError(rowNum, "location", locationPath, "location not found"), nil
	}

	rawProps := field(row, "properties")
	props, err := parseProperties(rawProps)
	if err != nil {
		return nil, rowError(rowNum, "properties", rawProps, err.Error()), nil
	}

	name := field(row, "name")
	if name == "" {
		name = model.Name
	}

	return &machine.Machine{
		ID:         v.node.Generate().String(),
		TenantID:   tenantID,
		ModelID:    model.ID,
		LocationID: loc.ID,
		Name:       name,
		Properties: props,
	}, nil, nil
}

func (v *validator) buildMaintenanceRange(ctx context.Context, tenantID string, row Row, rowNum int) (*maintenance.MaintenanceRange, *RowError, error) {
	if rowErr := requireFields(row, rowNum, "name", "description", "type"); rowErr != nil {
		return nil, rowErr, nil
	}

	rangeType := maintenance.RangeType(field(row, "type"))
	if !rangeType.Valid() {
		return nil, rowError(rowNum, "type", field(row, "type"), "type must be preventive or corrective"), nil
	}

	rawDays := field(row, "daysOfWeek")
	days, err := parseDaysOfWeek(rawDays)
	if err != nil {
		return nil, rowError(rowNum, "daysOfWeek", rawDays, err.Error()), nil
	}

	return &maintenance.MaintenanceRange{
		ID:          v.node.Generate().String(),
		TenantID:    tenantID,
		Name:        field(row, "name"),
		Description: field(row, "description"),
		Type:        rangeType,
		Frequency:   field(row, "frequency"),
		DaysOfWeek:  days,
		StartDate:   field(row, "startDate"),
		StartTime:   field(row, "startTime"),
	}, nil, nil
}

func (v *validator) buildOperation(ctx context.Context, tenantID string, row Row, rowNum int) (*maintenance.Operation, *RowError, error) {
	if rowErr := requireFields(row, rowNum, "name", "description", "type"); rowErr != nil {
		return nil, rowErr, nil
	}

	opType := maintenance.OperationType(field(row, "type"))
	if !opType.Valid() {
		return nil, rowError(rowNum, "type", field(row, "type"), "type must be one of text, date, time, datetime, boolean, number"), nil
	}

	return &maintenance.Operation{
		ID:          v.node.Generate().String(),
		TenantID:    tenantID,
		Name:        field(row, "name"),
		Description: field(row, "description"),
		Type:        opType,
	}, nil, nil
}

// parseDaysOfWeek decodes an optional comma-separated list of day-of-week
// indices. Empty input means no day constraint.
func parseDaysOfWeek(raw string) (datatypes.JSON, error) {
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	days := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		day, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid day of week %q", part)
		}
		days = append(days, day)
	}

	if len(days) == 0 {
		return nil, nil
	}

	encoded, err := json.Marshal(days)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(encoded), nil
}
