package importer

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"testing"

	"maintainops/pkg/errutil"
	"maintainops/services/testutil"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, JobRepository, *fakeStore) {
	t.Helper()

	db := testutil.NewTestDB(t, &ImportJob{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	jobs := NewJobRepository(db)
	store := newFakeStore()
	svc := NewService(ServiceParams{
		Jobs:  jobs,
		Store: store,
		Node:  node,
	})
	return svc, jobs, store
}

// uploadForm builds real multipart file headers the same way gin hands them
// to the service.
func uploadForm(t *testing.T, files map[string]string) []*multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, content := range files {
		fw, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	return form.File["files"]
}

func TestCreateJobsStoresFileAndCreatesPendingJob(t *testing.T) {
	svc, jobs, store := newTestService(t)
	ctx := context.Background()

	content := "name\nPlant A\n"
	created, err := svc.CreateJobs(ctx, testTenant, "locations", uploadForm(t, map[string]string{
		"locations.csv": content,
	}))
	require.NoError(t, err)
	require.Len(t, created, 1)

	resp := created[0]
	require.Equal(t, StatusPending, resp.Status)
	require.Equal(t, "locations.csv", resp.FileName)
	require.Equal(t, KindLocations, resp.Type)

	job, err := jobs.GetByID(ctx, testTenant, resp.ID)
	require.NoError(t, err)
	require.NotNil(t, job)
	require.Equal(t, StatusPending, job.Status)
	require.True(t, strings.HasPrefix(job.FileKey, "imports/"+testTenant+"/"))
	require.True(t, strings.HasSuffix(job.FileKey, ".csv"))

	require.Equal(t, []byte(content), store.objects[job.FileKey])
}

func TestCreateJobsOnePerFile(t *testing.T) {
	svc, _, _ := newTestService(t)

	created, err := svc.CreateJobs(context.Background(), testTenant, "operations", uploadForm(t, map[string]string{
		"ops-a.csv": "name,description,type\n",
		"ops-b.csv": "name,description,type\n",
	}))
	require.NoError(t, err)
	require.Len(t, created, 2)
	require.NotEqual(t, created[0].ID, created[1].ID)
}

func TestCreateJobsRejectsUnknownKind(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateJobs(context.Background(), testTenant, "widgets", uploadForm(t, map[string]string{
		"widgets.csv": "name\n",
	}))
	require.Error(t, err)

	var base errutil.BaseError
	require.ErrorAs(t, err, &base)
	require.Equal(t, errutil.StatusBadRequest, base.Code)
}

func TestCreateJobsRejectsUnsupportedExtensionBeforeCreatingAnything(t *testing.T) {
	svc, jobs, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateJobs(ctx, testTenant, "locations", uploadForm(t, map[string]string{
		"good.csv": "name\nPlant A\n",
		"bad.pdf":  "%PDF-1.4",
	}))
	require.Error(t, err)

	var base errutil.BaseError
	require.ErrorAs(t, err, &base)
	require.Equal(t, errutil.StatusUnsupportedMediaType, base.Code)

	// Extension validation runs before any upload, so the good file must not
	// have produced a job either.
	all, err := jobs.List(ctx, testTenant)
	require.NoError(t, err)
	require.Empty(t, all)
	require.Empty(t, store.objects)
}

func TestCreateJobsRejectsEmptyUpload(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateJobs(context.Background(), testTenant, "locations", nil)
	require.Error(t, err)

	var base errutil.BaseError
	require.ErrorAs(t, err, &base)
	require.Equal(t, errutil.StatusBadRequest, base.Code)
}

func TestCreateJobsStorageFailure(t *testing.T) {
	svc, jobs, store := newTestService(t)
	ctx := context.Background()

	store.putErr = errors.New("bucket unavailable")

	_, err := svc.CreateJobs(ctx, testTenant, "locations", uploadForm(t, map[string]string{
		"locations.csv": "name\nPlant A\n",
	}))
	require.Error(t, err)

	var base errutil.BaseError
	require.ErrorAs(t, err, &base)
	require.Equal(t, errutil.StatusInternal, base.Code)

	all, err := jobs.List(ctx, testTenant)
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestGetJobNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.GetJob(context.Background(), testTenant, "missing")
	require.Error(t, err)

	var base errutil.BaseError
	require.ErrorAs(t, err, &base)
	require.Equal(t, errutil.StatusNotFound, base.Code)
}

func TestGetJobIsTenantScoped(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateJobs(ctx, "tenant-a", "locations", uploadForm(t, map[string]string{
		"locations.csv": "name\nPlant A\n",
	}))
	require.NoError(t, err)

	_, err = svc.GetJob(ctx, "tenant-b", created[0].ID)
	require.Error(t, err)

	var base errutil.BaseError
	require.ErrorAs(t, err, &base)
	require.Equal(t, errutil.StatusNotFound, base.Code)
}

func TestListJobsEmpty(t *testing.T) {
	svc, _, _ := newTestService(t)

	jobs, err := svc.ListJobs(context.Background(), testTenant)
	require.NoError(t, err)
	require.NotNil(t, jobs)
	require.Empty(t, jobs)
}
