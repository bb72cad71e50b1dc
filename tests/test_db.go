package tests

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/flokiorg/appinion/db"
)

// CreateTestDB opens a migrated in-memory database private to the test.
func CreateTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gormDB, err := db.NewDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", name), false)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Stop(gormDB)
	})
	return gormDB
}
