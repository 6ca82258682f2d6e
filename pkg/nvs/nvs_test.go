package nvs

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meshx.db")
	s, err := Open(path, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSetProductInfoStoresIdentity(t *testing.T) {
	s := openTestStore(t)
	if err := s.SetProductInfo(0x0059, 0x1234); err != nil {
		t.Fatalf("SetProductInfo: %v", err)
	}
	cid, pid, err := s.ProductInfo()
	if err != nil {
		t.Fatalf("ProductInfo: %v", err)
	}
	if cid != 0x0059 || pid != 0x1234 {
		t.Fatalf("got (%#x, %#x), want (0x59, 0x1234)", cid, pid)
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	if err := s.Set("k1", []byte{1, 2, 3}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := s.Get("k1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || len(v) != 3 || v[0] != 1 || v[1] != 2 || v[2] != 3 {
		t.Fatalf("got (%v, %v), want ([1 2 3], true)", v, ok)
	}
}

func TestGetMissingKeyReturnsFalse(t *testing.T) {
	s := openTestStore(t)
	_, ok, err := s.Get("missing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false for a missing key")
	}
}

func TestSetOverwritesExistingValue(t *testing.T) {
	s := openTestStore(t)
	s.Set("k1", []byte{1})
	s.Set("k1", []byte{9, 9})
	v, ok, err := s.Get("k1")
	if err != nil || !ok {
		t.Fatalf("Get: %v, ok=%v", err, ok)
	}
	if len(v) != 2 || v[0] != 9 || v[1] != 9 {
		t.Fatalf("got %v, want [9 9]", v)
	}
}

func TestElementStateRoundTrip(t *testing.T) {
	s := openTestStore(t)
	if err := s.SetElementState(0x0003, []byte{0xAA}); err != nil {
		t.Fatalf("SetElementState: %v", err)
	}
	v, ok, err := s.ElementState(0x0003)
	if err != nil || !ok {
		t.Fatalf("ElementState: err=%v ok=%v", err, ok)
	}
	if len(v) != 1 || v[0] != 0xAA {
		t.Fatalf("got %v, want [0xAA]", v)
	}
	if _, ok, _ := s.ElementState(0x0004); ok {
		t.Fatal("expected no state for a different element index")
	}
}

func TestRemoveDeletesKey(t *testing.T) {
	s := openTestStore(t)
	s.Set("k1", []byte{1})
	if err := s.Remove("k1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok, _ := s.Get("k1"); ok {
		t.Fatal("key still present after Remove")
	}
}

func TestEraseClearsEverythingIncludingProductInfo(t *testing.T) {
	s := openTestStore(t)
	s.SetProductInfo(1, 1)
	s.Set("k1", []byte{1})
	if err := s.Erase(); err != nil {
		t.Fatalf("Erase: %v", err)
	}
	if _, ok, _ := s.Get("k1"); ok {
		t.Fatal("key still present after Erase")
	}
	cid, pid, err := s.ProductInfo()
	if err != nil {
		t.Fatalf("ProductInfo: %v", err)
	}
	if cid != 0 || pid != 0 {
		t.Fatalf("got (%#x, %#x), want (0, 0) after erase", cid, pid)
	}
}

func TestSetProductInfoMismatchReinitializes(t *testing.T) {
	s := openTestStore(t)
	s.SetProductInfo(0x0059, 0x1111)
	s.Set("stale", []byte{1})

	if err := s.SetProductInfo(0x0059, 0x2222); err != nil {
		t.Fatalf("SetProductInfo: %v", err)
	}

	if _, ok, _ := s.Get("stale"); ok {
		t.Fatal("mismatched product ID should have erased prior entries")
	}
	cid, pid, err := s.ProductInfo()
	if err != nil {
		t.Fatalf("ProductInfo: %v", err)
	}
	if cid != 0x0059 || pid != 0x2222 {
		t.Fatalf("got (%#x, %#x), want (0x59, 0x2222)", cid, pid)
	}
}

func TestSetProductInfoMatchPreservesData(t *testing.T) {
	s := openTestStore(t)
	s.SetProductInfo(0x0059, 0x3333)
	s.Set("kept", []byte{7})

	if err := s.SetProductInfo(0x0059, 0x3333); err != nil {
		t.Fatalf("SetProductInfo: %v", err)
	}

	v, ok, err := s.Get("kept")
	if err != nil || !ok || len(v) != 1 || v[0] != 7 {
		t.Fatalf("got (%v, %v, %v), want ([7], true, nil)", v, ok, err)
	}
}

func TestCommitSucceedsWithoutAStabilityTimer(t *testing.T) {
	s := openTestStore(t)
	if err := s.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
}

func TestStabilityTimerCommitsAfterQuietPeriod(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meshx.db")
	s, err := Open(path, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	s.Set("k1", []byte{1})
	time.Sleep(60 * time.Millisecond)
}
