package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("CASHBOOK_TEST_MODE") == "" {
			_ = os.Setenv("CASHBOOK_TEST_MODE", "1")
		}
	})
}
