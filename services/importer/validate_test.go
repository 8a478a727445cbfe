package importer

import (
	"context"
	"testing"

	"maintainops/services/location"
	"maintainops/services/machine"
	"maintainops/services/testutil"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

const testTenant = "tenant-1"

func newTestValidator(t *testing.T) (*validator, *gorm.DB) {
	t.Helper()

	db := testutil.NewTestDB(t,
		&location.Location{},
		&machine.MachineModel{},
		&machine.Machine{},
	)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return newValidator(location.NewRepository(db), machine.NewModelRepository(db), node), db
}

func TestBuildLocationResolvesParentByName(t *testing.T) {
	v, db := newTestValidator(t)
	ctx := context.Background()

	parent := &location.Location{ID: "loc-1", TenantID: testTenant, Name: "Plant A", Path: "Plant A"}
	require.NoError(t, db.Create(parent).Error)

	loc, rowErr, err := v.buildLocation(ctx, testTenant, Row{"name": "Building A", "parentId": "Plant A"}, 1)
	require.NoError(t, err)
	require.Nil(t, rowErr)
	require.NotNil(t, loc.ParentID)
	require.Equal(t, "loc-1", *loc.ParentID)
	require.Equal(t, "Plant A/Building A", loc.Path)
}

func TestBuildLocationUnknownParentFallsBackToRoot(t *testing.T) {
	v, _ := newTestValidator(t)

	loc, rowErr, err := v.buildLocation(context.Background(), testTenant, Row{"name": "Orphan", "parentId": "Nonexistent"}, 1)
	require.NoError(t, err)
	require.Nil(t, rowErr)
	require.Nil(t, loc.ParentID)
	require.Equal(t, "Orphan", loc.Path)
}

func TestBuildLocationMissingName(t *testing.T) {
	v, _ := newTestValidator(t)

	loc, rowErr, err := v.buildLocation(context.Background(), testTenant, Row{"name": "   "}, 3)
	require.NoError(t, err)
	require.Nil(t, loc)
	require.NotNil(t, rowErr)
	require.Equal(t, 3, rowErr.Row)
	require.Equal(t, "name", rowErr.Field)
}

func TestBuildLocationIgnoresParentOfOtherTenant(t *testing.T) {
	v, db := newTestValidator(t)

	other := &location.Location{ID: "loc-9", TenantID: "tenant-2", Name: "Plant A", Path: "Plant A"}
	require.NoError(t, db.Create(other).Error)

	loc, rowErr, err := v.buildLocation(context.Background(), testTenant, Row{"name": "Building A", "parentId": "Plant A"}, 1)
	require.NoError(t, err)
	require.Nil(t, rowErr)
	require.Nil(t, loc.ParentID)
}

func TestBuildMachineModelBadYear(t *testing.T) {
	v, _ := newTestValidator(t)

	row := Row{"name": "X1", "manufacturer": "A", "brand": "X", "year": "not-a-number", "properties": "{}"}
	model, rowErr, err := v.buildMachineModel(context.Background(), testTenant, row, 2)
	require.NoError(t, err)
	require.Nil(t, model)
	require.NotNil(t, rowErr)
	require.Equal(t, "year", rowErr.Field)
	require.Equal(t, "not-a-number", rowErr.Value)
}

func TestBuildMachineModelRejectsNonFiniteYear(t *testing.T) {
	v, _ := newTestValidator(t)

	for _, raw := range []string{"NaN", "Inf", "-Inf"} {
		row := Row{"name": "X1", "manufacturer": "A", "brand": "X", "year": raw}
		_, rowErr, err := v.buildMachineModel(context.Background(), testTenant, row, 1)
		require.NoError(t, err)
		require.NotNil(t, rowErr, raw)
		require.Equal(t, "year", rowErr.Field)
	}
}

func TestBuildMachineModelMalformedProperties(t *testing.T) {
	v, _ := newTestValidator(t)

	row := Row{"name": "X1", "manufacturer": "A", "brand": "X", "year": "2020", "properties": "{not json"}
	_, rowErr, err := v.buildMachineModel(context.Background(), testTenant, row, 5)
	require.NoError(t, err)
	require.NotNil(t, rowErr)
	require.Equal(t, "properties", rowErr.Field)
	require.Equal(t, "{not json", rowErr.Value)
}

func TestBuildMachineModelPropertiesMustBeScalars(t *testing.T) {
	v, _ := newTestValidator(t)

	row := Row{"name": "X1", "manufacturer": "A", "brand": "X", "year": "2020", "properties": `{"nested": {"a": 1}}`}
	_, rowErr, err := v.buildMachineModel(context.Background(), testTenant, row, 1)
	require.NoError(t, err)
	require.NotNil(t, rowErr)
	require.Equal(t, "properties", rowErr.Field)
}

func TestBuildMachineModelRejectsNullProperty(t *testing.T) {
	v, _ := newTestValidator(t)

	row := Row{"name": "X1", "manufacturer": "A", "brand": "X", "year": "2020", "properties": `{"power": null}`}
	_, rowErr, err := v.buildMachineModel(context.Background(), testTenant, row, 2)
	require.NoError(t, err)
	require.NotNil(t, rowErr)
	require.Equal(t, "properties", rowErr.Field)
	require.Equal(t, `{"power": null}`, rowErr.Value)
}

func TestBuildMachineModelValid(t *testing.T) {
	v, _ := newTestValidator(t)

	row := Row{"name": " X1 ", "manufacturer": "Acme", "brand": "X", "year": "2020", "properties": `{"power": 42, "mobile": true}`}
	model, rowErr, err := v.buildMachineModel(context.Background(), testTenant, row, 1)
	require.NoError(t, err)
	require.Nil(t, rowErr)
	require.Equal(t, "X1", model.Name)
	require.Equal(t, float64(2020), model.Year)
	require.NotEmpty(t, model.Properties)
}

func TestBuildMachineUnknownModel(t *testing.T) {
	v, _ := newTestValidator(t)

	row := Row{"model": "Ghost", "location": "Plant A"}
	m, rowErr, err := v.buildMachine(context.Background(), testTenant, row, 4)
	require.NoError(t, err)
	require.Nil(t, m)
	require.NotNil(t, rowErr)
	require.Equal(t, "model", rowErr.Field)
	require.Equal(t, "Ghost", rowErr.Value)
}

func TestBuildMachineUnknownLocationPath(t *testing.T) {
	v, db := newTestValidator(t)

	model := &machine.MachineModel{ID: "mm-1", TenantID: testTenant, Name: "X1"}
	require.NoError(t, db.Create(model).Error)

	row := Row{"model": "X1", "location": "Plant A/Line 9"}
	_, rowErr, err := v.buildMachine(context.Background(), testTenant, row, 1)
	require.NoError(t, err)
	require.NotNil(t, rowErr)
	require.Equal(t, "location", rowErr.Field)
}

func TestBuildMachineResolvesByPath(t *testing.T) {
	v, db := newTestValidator(t)

	model := &machine.MachineModel{ID: "mm-1", TenantID: testTenant, Name: "X1"}
	require.NoError(t, db.Create(model).Error)
	loc := &location.Location{ID: "loc-1", TenantID: testTenant, Name: "Line 1", Path: "Plant A/Line 1"}
	require.NoError(t, db.Create(loc).Error)

	row := Row{"model": "X1", "location": "Plant A/Line 1"}
	m, rowErr, err := v.buildMachine(context.Background(), testTenant, row, 1)
	require.NoError(t, err)
	require.Nil(t, rowErr)
	require.Equal(t, "mm-1", m.ModelID)
	require.Equal(t, "loc-1", m.LocationID)
	require.Equal(t, "X1", m.Name)
}

func TestBuildMaintenanceRangeBadType(t *testing.T) {
	v, _ := newTestValidator(t)

	row := Row{"name": "Monthly", "description": "Monthly checks", "type": "urgent"}
	mr, rowErr, err := v.buildMaintenanceRange(context.Background(), testTenant, row, 7)
	require.NoError(t, err)
	require.Nil(t, mr)
	require.NotNil(t, rowErr)
	require.Equal(t, "type", rowErr.Field)
	require.Equal(t, "urgent", rowErr.Value)
}

func TestBuildMaintenanceRangeDaysOfWeek(t *testing.T) {
	v, _ := newTestValidator(t)

	row := Row{"name": "Weekly", "description": "Weekly checks", "type": "preventive", "daysOfWeek": "1, 3,5"}
	mr, rowErr, err := v.buildMaintenanceRange(context.Background(), testTenant, row, 1)
	require.NoError(t, err)
	require.Nil(t, rowErr)
	require.JSONEq(t, "[1,3,5]", string(mr.DaysOfWeek))

	row["daysOfWeek"] = "1,two"
	_, rowErr, err = v.buildMaintenanceRange(context.Background(), testTenant, row, 2)
	require.NoError(t, err)
	require.NotNil(t, rowErr)
	require.Equal(t, "daysOfWeek", rowErr.Field)
	require.Equal(t, "1,two", rowErr.Value)
}

func TestBuildMaintenanceRangeEmptyDaysOfWeekIsNoConstraint(t *testing.T) {
	v, _ := newTestValidator(t)

	row := Row{"name": "Weekly", "description": "Weekly checks", "type": "corrective", "daysOfWeek": "   "}
	mr, rowErr, err := v.buildMaintenanceRange(context.Background(), testTenant, row, 1)
	require.NoError(t, err)
	require.Nil(t, rowErr)
	require.Empty(t, mr.DaysOfWeek)
}

func TestBuildOperationBadType(t *testing.T) {
	v, _ := newTestValidator(t)

	row := Row{"name": "Check oil", "description": "Check oil level", "type": "photo"}
	op, rowErr, err := v.buildOperation(context.Background(), testTenant, row, 1)
	require.NoError(t, err)
	require.Nil(t, op)
	require.NotNil(t, rowErr)
	require.Equal(t, "type", rowErr.Field)
}

func TestBuildOperationValidTypes(t *testing.T) {
	v, _ := newTestValidator(t)

	for _, opType := range []string{"text", "date", "time", "datetime", "boolean", "number"} {
		row := Row{"name": "Step", "description": "A step", "type": opType}
		op, rowErr, err := v.buildOperation(context.Background(), testTenant, row, 1)
		require.NoError(t, err)
		require.Nil(t, rowErr, opType)
		require.Equal(t, opType, string(op.Type))
	}
}

func TestRequireFieldsFailFastOrder(t *testing.T) {
	rowErr := requireFields(Row{"description": "x"}, 1, "name", "description", "type")
	require.NotNil(t, rowErr)
	require.Equal(t, "name", rowErr.Field)

	rowErr = requireFields(Row{"name": "x", "description": "y"}, 1, "name", "description", "type")
	require.NotNil(t, rowErr)
	require.Equal(t, "type", rowErr.Field)
}
