package xmltree

import (
	"testing"

	"simconfig/testutil"
)

func TestElementTreeStaysStdlibOnly(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.ExternalImportForbidden,
		"the element tree is a leaf package with no module dependencies")
	testutil.AssertNoDirectImports(t, ".", testutil.InternalImportForbidden,
		"public packages must not reach into internal")
}
