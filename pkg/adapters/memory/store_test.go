package memory_test

import (
	"testing"

	"github.com/strandkit/strand/pkg/adapters/memory"
	"github.com/strandkit/strand/pkg/ports/tests"
)

func TestMemoryStore_Contract(t *testing.T) {
	tests.ChainStoreContractTest(t, memory.New())
}
