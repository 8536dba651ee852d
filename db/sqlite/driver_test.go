package sqlite

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMemory_ConcurrentUseSeesOneDatabase(t *testing.T) {
	db, err := OpenMemory()
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE notes (id INTEGER PRIMARY KEY AUTOINCREMENT, body TEXT)").Error)

	// A request handler and the background notify worker share one
	// *gorm.DB; every goroutine must land in the same database.
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := db.Exec("INSERT INTO notes (body) VALUES (?)", fmt.Sprintf("note %d", i)).Error; err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var n int
	require.NoError(t, db.Raw("SELECT COUNT(*) FROM notes").Scan(&n).Error)
	assert.Equal(t, 8, n)
}

func TestOpenMemory_IsolatedPerCall(t *testing.T) {
	a, err := OpenMemory()
	require.NoError(t, err)
	b, err := OpenMemory()
	require.NoError(t, err)

	require.NoError(t, a.Exec("CREATE TABLE only_a (id INTEGER PRIMARY KEY)").Error)

	var n int
	err = b.Raw("SELECT COUNT(*) FROM only_a").Scan(&n).Error
	assert.Error(t, err, "second instance must not see the first instance's tables")
}
