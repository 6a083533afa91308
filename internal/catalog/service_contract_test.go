package catalog

import (
	"fmt"
	"go/types"
	"sort"
	"strings"
	"sync"
	"testing"

	"golang.org/x/tools/go/packages"
)

func TestServiceStructContract(t *testing.T) {
	pkg := loadCatalogPackage(t)

	obj := pkg.Types.Scope().Lookup("Service")
	if obj == nil {
		t.Fatalf("Service type not found in package")
	}
	named, ok := obj.Type().(*types.Named)
	if !ok {
		t.Fatalf("Service is not a named type")
	}
	structType, ok := named.Underlying().(*types.Struct)
	if !ok {
		t.Fatalf("Service is not a struct")
	}

	qualifier := func(p *types.Package) string {
		if p == nil {
			return ""
		}
		return p.Path()
	}

	fields := make(map[string]string, structType.NumFields())
	for i := 0; i < structType.NumFields(); i++ {
		field := structType.Field(i)
		fields[field.Name()] = types.TypeString(field.Type(), qualifier)
	}

	required := map[string]string{
		"store":   "simconfig/internal/catalog.Store",
		"metrics": "simconfig/internal/catalog.MetricsRecorder",
		"tracer":  "simconfig/internal/catalog.Tracer",
		"clock":   "func() time.Time",
	}

	var problems []string
	for name, want := range required {
		got, ok := fields[name]
		if !ok {
			problems = append(problems, fmt.Sprintf("missing field %s", name))
			continue
		}
		if got != want {
			problems = append(problems, fmt.Sprintf("%s: want %s, got %s", name, want, got))
		}
	}
	if len(problems) > 0 {
		t.Fatalf("service struct contract violated:\n%s", strings.Join(problems, "\n"))
	}
}

// TestStoreImplementationsHardening keeps the set of Store backends closed:
// new backends need an explicit test update alongside the factory wiring.
func TestStoreImplementationsHardening(t *testing.T) {
	pkg := loadCatalogPackage(t)

	obj := pkg.Types.Scope().Lookup("Store")
	if obj == nil {
		t.Fatalf("Store interface not found")
	}
	iface, ok := obj.Type().Underlying().(*types.Interface)
	if !ok {
		t.Fatalf("Store is not an interface")
	}

	var impls []string
	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		named, ok := scope.Lookup(name).Type().(*types.Named)
		if !ok {
			continue
		}
		if _, isIface := named.Underlying().(*types.Interface); isIface {
			continue
		}
		if types.Implements(types.NewPointer(named), iface) {
			impls = append(impls, name)
		}
	}
	sort.Strings(impls)

	want := []string{"MemoryStore", "PostgresStore", "SQLiteStore"}
	if strings.Join(impls, ",") != strings.Join(want, ",") {
		t.Fatalf("Store implementations drifted: got %v, want %v", impls, want)
	}
}

var (
	catalogPkgOnce sync.Once
	catalogPkg     *packages.Package
	catalogPkgErr  error
)

func loadCatalogPackage(t *testing.T) *packages.Package {
	t.Helper()

	catalogPkgOnce.Do(func() {
		cfg := &packages.Config{
			Mode: packages.NeedName | packages.NeedTypes | packages.NeedSyntax | packages.NeedCompiledGoFiles | packages.NeedFiles,
		}
		pkgs, err := packages.Load(cfg, "simconfig/internal/catalog")
		if err != nil {
			catalogPkgErr = fmt.Errorf("load catalog package: %w", err)
			return
		}
		if len(pkgs) == 0 {
			catalogPkgErr = fmt.Errorf("no packages returned when loading catalog")
			return
		}
		for _, pkg := range pkgs {
			if len(pkg.Errors) > 0 {
				catalogPkgErr = fmt.Errorf("package load errors: %v", pkg.Errors)
				return
			}
		}
		catalogPkg = pkgs[0]
	})
	if catalogPkgErr != nil {
		t.Fatalf("%v", catalogPkgErr)
	}
	if catalogPkg == nil {
		t.Fatalf("catalog package not loaded")
	}
	return catalogPkg
}
