package shared_test

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-service/internal/shared"
)

func TestRegistry_ResolveGlobalRange(t *testing.T) {
	for _, code := range []shared.Code{1000, 1001, 1500, 1999} {
		t.Run(code.String(), func(t *testing.T) {
			files := newMemFiles(map[string]string{
				"global.json":  fmt.Sprintf(`{"%d": "from global"}`, code),
				"service.json": fmt.Sprintf(`{"%d": "from service"}`, code),
			})
			reg := newTestRegistry(files)

			assert.Equal(t, "from global", reg.Resolve(code, "fallback"))
			assert.Equal(t, 1, files.Reads("global.json"))
			assert.Zero(t, files.Reads("service.json"))
		})
	}
}

func TestRegistry_ResolveServiceRange(t *testing.T) {
	for _, code := range []shared.Code{0, 1, 999, 2000, 2001, 40401} {
		t.Run(code.String(), func(t *testing.T) {
			files := newMemFiles(map[string]string{
				"global.json":  fmt.Sprintf(`{"%d": "from global"}`, code),
				"service.json": fmt.Sprintf(`{"%d": "from service"}`, code),
			})
			reg := newTestRegistry(files)

			assert.Equal(t, "from service", reg.Resolve(code, "fallback"))
			assert.Zero(t, files.Reads("global.json"))
			assert.Equal(t, 1, files.Reads("service.json"))
		})
	}
}

func TestRegistry_ResolveFallback(t *testing.T) {
	files := newMemFiles(map[string]string{"global.json": `{}`, "service.json": `{"2001": "User already exists"}`})
	reg := newTestRegistry(files)

	assert.Equal(t, "fallback", reg.Resolve(1007, "fallback"))
	assert.Equal(t, "", reg.Resolve(2999, ""))
	assert.Equal(t, "Error code: 2999", reg.New(2999).Message())
	assert.Equal(t, "User already exists", reg.New(2001).Message())

	// catalogs are read once no matter how many lookups follow
	assert.Equal(t, 1, files.Reads("global.json"))
	assert.Equal(t, 1, files.Reads("service.json"))
}

func TestRegistry_NotFoundFromCatalogFile(t *testing.T) {
	global := writeCatalog(t, "error.json", `{"1002": "Resource missing"}`)
	service := writeCatalog(t, "service.json", `{}`)
	reg := shared.NewRegistry(
		shared.NewCatalog(shared.GlobalCatalog, global, shared.WithLogger(discard)),
		shared.NewCatalog(shared.ServiceCatalog, service, shared.WithLogger(discard)),
	)

	err := reg.NotFound()
	assert.Equal(t, "Resource missing", err.Message())
	assert.Equal(t, http.StatusNotFound, err.Status())
}

func TestRegistry_UnparseableCatalogFallsBack(t *testing.T) {
	files := newMemFiles(map[string]string{"global.json": `{oops`, "service.json": `{}`})
	reg := newTestRegistry(files)

	require.NoError(t, reg.Preload())
	assert.Equal(t, "Error code: 1002", reg.NotFound().Message())
}

func TestRegistry_Preload(t *testing.T) {
	t.Run("both present", func(t *testing.T) {
		files := newMemFiles(map[string]string{"global.json": `{}`, "service.json": `{}`})
		reg := newTestRegistry(files)

		require.NoError(t, reg.Preload())
		reg.NotFound()
		reg.New(2001)
		assert.Equal(t, 1, files.Reads("global.json"))
		assert.Equal(t, 1, files.Reads("service.json"))
	})

	t.Run("service missing", func(t *testing.T) {
		files := newMemFiles(map[string]string{"global.json": `{}`})
		reg := newTestRegistry(files)

		err := reg.Preload()
		require.Error(t, err)
		assert.ErrorIs(t, err, fs.ErrNotExist)
		assert.Contains(t, err.Error(), "service error catalog")

		// global codes keep working, service codes are fatal
		assert.Equal(t, "Error code: 1002", reg.NotFound().Message())
		assert.Panics(t, func() { reg.New(2001) })
		assert.NotPanics(t, func() { reg.New(2001, shared.WithMessage("explicit")) })
	})

	t.Run("both missing", func(t *testing.T) {
		reg := newTestRegistry(newMemFiles(map[string]string{}))

		err := reg.Preload()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "global error catalog")
		assert.Contains(t, err.Error(), "service error catalog")
	})
}

func TestRegistry_From(t *testing.T) {
	reg := newTestRegistry(newMemFiles(map[string]string{"global.json": `{}`, "service.json": `{}`}))

	assert.Nil(t, reg.From(nil))

	ae := reg.NotFound(shared.WithMessage("user not found"))
	assert.Same(t, ae, reg.From(ae))
	assert.Same(t, ae, reg.From(fmt.Errorf("get user: %w", ae)))

	plain := reg.From(errors.New("timeout"))
	assert.Equal(t, shared.CodeInternal, plain.Code())
	assert.Equal(t, http.StatusInternalServerError, plain.Status())
	assert.Equal(t, "timeout", plain.Message())
}

func TestRegistry_Catalog(t *testing.T) {
	reg := newTestRegistry(newMemFiles(map[string]string{}))

	assert.Equal(t, shared.GlobalCatalog, reg.Catalog(shared.GlobalCatalog).Kind())
	assert.Equal(t, "global.json", reg.Catalog(shared.GlobalCatalog).Path())
	assert.Equal(t, shared.ServiceCatalog, reg.Catalog(shared.ServiceCatalog).Kind())
	assert.Equal(t, "service.json", reg.Catalog(shared.ServiceCatalog).Path())
}

func TestRegistry_ConcurrentConstruction(t *testing.T) {
	files := newMemFiles(map[string]string{
		"global.json":  `{"1002": "Resource missing"}`,
		"service.json": `{"2001": "User already exists"}`,
	})
	reg := newTestRegistry(files)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.Equal(t, "Resource missing", reg.NotFound().Message())
		}()
		go func() {
			defer wg.Done()
			assert.Equal(t, "User already exists", reg.New(2001).Message())
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, files.Reads("global.json"))
	assert.Equal(t, 1, files.Reads("service.json"))
}

func TestDefaultRegistry(t *testing.T) {
	prev := shared.Default()
	t.Cleanup(func() { shared.SetDefault(prev) })

	files := newMemFiles(map[string]string{
		"global.json":  `{"1003": "Please sign in"}`,
		"service.json": `{"2001": "User already exists"}`,
	})
	reg := newTestRegistry(files)
	shared.SetDefault(reg)
	shared.SetDefault(nil)

	assert.Same(t, reg, shared.Default())
	assert.Equal(t, "Please sign in", shared.Unauthorized().Message())
	assert.Equal(t, "User already exists", shared.New(2001).Message())
	assert.Equal(t, shared.CodeInternal, shared.InternalError().Code())
	assert.Equal(t, shared.CodeBadRequest, shared.BadRequest().Code())
	assert.Equal(t, shared.CodeNotFound, shared.NotFound().Code())
	assert.Equal(t, shared.CodeValidation, shared.ValidationError().Code())
	assert.Equal(t, shared.CodeDatabase, shared.DatabaseError().Code())
}
