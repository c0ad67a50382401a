package testkit

import (
	"testing"

	"github.com/shashiranjanraj/sofreh/pkg/credentials"
	"github.com/shashiranjanraj/sofreh/pkg/storage"
)

// TempDataDir points document storage at a fresh temp directory and clears
// the in-memory credential cache, so each test starts anonymous with no
// local documents.  Cleanup restores nothing: the next test calls it again.
func TempDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DATA_DIR", dir)
	storage.RegisterDisk("local", storage.NewLocalDisk(dir))
	credentials.Forget()
	t.Cleanup(credentials.Forget)
	return dir
}

// SeedCredentials stores a token pair in the temp data dir so the code under
// test starts authenticated.  Call TempDataDir first.
func SeedCredentials(t *testing.T, access, refresh string) {
	t.Helper()
	if err := credentials.Set(access, refresh); err != nil {
		t.Fatalf("testkit: seed credentials: %v", err)
	}
}
