package farmers

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dairyerp/dairyclient/internal/apierr"
	"github.com/dairyerp/dairyclient/internal/backendtest"
	"github.com/dairyerp/dairyclient/internal/domain/models"
	"github.com/dairyerp/dairyclient/internal/session"
	"github.com/dairyerp/dairyclient/internal/storage"
	"github.com/dairyerp/dairyclient/internal/transport"
)

func newEnv(t *testing.T) (*backendtest.Server, *Service) {
	t.Helper()

	backend := backendtest.New()
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)

	tc := transport.New(transport.Config{BaseURL: srv.URL + "/api", Timeout: 5 * time.Second}, zap.NewNop())
	mgr := session.NewManager(tc, storage.NewMemoryStore(), zap.NewNop())
	tc.SetCredentials(session.CredentialSource{Manager: mgr})

	_, err := mgr.Login(context.Background(), models.Credentials{Username: "admin", Password: "admin123"})
	require.NoError(t, err)

	return backend, NewService(tc, zap.NewNop())
}

func seedFourFarmers(backend *backendtest.Server) {
	backend.SeedFarmers(
		models.Farmer{FarmerCode: "FARM001", FullName: "Rajesh Patil", Village: "Kolhapur", ContactNumber: "9876500001", IsActive: true},
		models.Farmer{FarmerCode: "FARM002", FullName: "Suresh Kumar", Village: "Sangli", ContactNumber: "9876500002", IsActive: true},
		models.Farmer{FarmerCode: "FARM003", FullName: "Mahesh Jadhav", Village: "Satara", ContactNumber: "9876500003", IsActive: false},
		models.Farmer{FarmerCode: "FARM004", FullName: "Ganesh More", Village: "Karad", ContactNumber: "9876500004", IsActive: true},
	)
}

func TestListSearchScenario(t *testing.T) {
	// Four farmers, exactly one name contains "raj" case-insensitively.
	backend, svc := newEnv(t)
	seedFourFarmers(backend)

	result, err := svc.List(context.Background(), models.FarmerSearchParams{
		Search: "raj", Page: 1, PageSize: 10,
	})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	require.Equal(t, "Rajesh Patil", result.Items[0].FullName)
	require.Equal(t, 1, result.TotalCount)
	require.Equal(t, 1, result.TotalPages)
}

func TestListActiveFilterAndPaging(t *testing.T) {
	backend, svc := newEnv(t)
	seedFourFarmers(backend)
	ctx := context.Background()

	active := true
	result, err := svc.List(ctx, models.FarmerSearchParams{IsActive: &active, Page: 1, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	require.Equal(t, 3, result.TotalCount)
	require.Equal(t, 2, result.TotalPages)
	// Backend order preserved.
	require.Equal(t, "FARM001", result.Items[0].FarmerCode)
	require.Equal(t, "FARM002", result.Items[1].FarmerCode)

	second, err := svc.List(ctx, models.FarmerSearchParams{IsActive: &active, Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	require.Equal(t, "FARM004", second.Items[0].FarmerCode)
}

func TestFilterMatchesCodeVillageContact(t *testing.T) {
	farmerSet := []models.Farmer{
		{FarmerCode: "FARM010", FullName: "A", Village: "Wagholi", ContactNumber: "9000011111"},
		{FarmerCode: "FARM020", FullName: "B", Village: "Shirur", ContactNumber: "9000022222"},
	}

	byCode := Filter(farmerSet, models.FarmerSearchParams{Search: "farm02"})
	require.Len(t, byCode, 1)
	require.Equal(t, "B", byCode[0].FullName)

	byVillage := Filter(farmerSet, models.FarmerSearchParams{Search: "WAGHOLI"})
	require.Len(t, byVillage, 1)
	require.Equal(t, "A", byVillage[0].FullName)

	byContact := Filter(farmerSet, models.FarmerSearchParams{Search: "22222"})
	require.Len(t, byContact, 1)
	require.Equal(t, "B", byContact[0].FullName)
}

func TestCreateGeneratesFallbackCode(t *testing.T) {
	_, svc := newEnv(t)
	svc.now = func() time.Time { return time.UnixMilli(1717243500123) }

	created, err := svc.Create(context.Background(), models.CreateFarmer{
		FullName:      "New Farmer",
		ContactNumber: "9876512345",
	})
	require.NoError(t, err)
	require.Equal(t, "FARM500123", created.FarmerCode)
	require.True(t, created.IsActive)
}

func TestCreateKeepsCallerCode(t *testing.T) {
	_, svc := newEnv(t)

	created, err := svc.Create(context.Background(), models.CreateFarmer{
		FarmerCode:    "GOKUL042",
		FullName:      "Coded Farmer",
		ContactNumber: "9876512399",
	})
	require.NoError(t, err)
	require.Equal(t, "GOKUL042", created.FarmerCode)
}

func TestCreateDuplicateCodeRejectedByBackend(t *testing.T) {
	backend, svc := newEnv(t)
	backend.SeedFarmers(models.Farmer{FarmerCode: "DUP001", FullName: "First", ContactNumber: "1", IsActive: true})

	_, err := svc.Create(context.Background(), models.CreateFarmer{
		FarmerCode:    "DUP001",
		FullName:      "Second",
		ContactNumber: "2",
	})
	var httpErr *apierr.HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, 409, httpErr.Status)
}

func TestCreateRequiresName(t *testing.T) {
	_, svc := newEnv(t)

	_, err := svc.Create(context.Background(), models.CreateFarmer{ContactNumber: "123"})
	var valErr *apierr.ValidationError
	require.ErrorAs(t, err, &valErr)
	require.Equal(t, "fullName", valErr.Field)
}

func TestUpdateAndDelete(t *testing.T) {
	backend, svc := newEnv(t)
	seedFourFarmers(backend)
	ctx := context.Background()

	village := "Ichalkaranji"
	require.NoError(t, svc.Update(ctx, 1, models.UpdateFarmer{Village: &village}))

	updated, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "Ichalkaranji", updated.Village)

	require.NoError(t, svc.Delete(ctx, 1))
	deleted, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	require.False(t, deleted.IsActive)
}

func TestServerSideSearch(t *testing.T) {
	backend, svc := newEnv(t)
	seedFourFarmers(backend)

	results, err := svc.Search(context.Background(), "kolhapur")
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "Rajesh Patil", results[0].FullName)
}

func TestEnrichmentReadsFailSoft(t *testing.T) {
	// The fake backend has no /Reports surface, so these reads hit 404;
	// being best-effort they must degrade instead of erroring.
	_, svc := newEnv(t)
	ctx := context.Background()

	collections := svc.Collections(ctx, 1, "2025-01-01", "2025-01-31")
	require.Empty(t, collections)

	summary, ok := svc.PaymentSummary(ctx, 1, "2025-01-01", "2025-01-31")
	require.False(t, ok)
	require.Nil(t, summary)
}
