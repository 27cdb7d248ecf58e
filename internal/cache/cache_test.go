package cache

import (
	"strings"
	"testing"
	"time"
)

func TestTableKey(t *testing.T) {
	key := TableKey("https://proj.supabase.co", "telco_customer_data")
	if !strings.HasPrefix(key, "datalift:v1:") {
		t.Errorf("key = %q, want datalift:v1: prefix", key)
	}
	if key != TableKey("https://proj.supabase.co", "telco_customer_data") {
		t.Error("key not deterministic")
	}
	if key == TableKey("https://proj.supabase.co", "air_quality_data") {
		t.Error("different tables share a key")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, 0)

	if _, found := c.Get("missing"); found {
		t.Error("Get(missing) found")
	}
	if err := c.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if val, found := c.Get("k"); !found || string(val) != "v" {
		t.Errorf("Get(k) = %q, %v", val, found)
	}
	if err := c.Delete("k"); err != nil {
		t.Fatal(err)
	}
	if _, found := c.Get("k"); found {
		t.Error("Get(k) found after Delete")
	}
}

func TestDiskCachePersistsAndExpires(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Minute)

	if err := c.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	// a fresh instance over the same dir sees the entry
	c2 := NewDiskCache(dir, time.Minute)
	if val, found := c2.Get("k"); !found || string(val) != "v" {
		t.Errorf("Get(k) across instances = %q, %v", val, found)
	}

	if err := c.Set("gone", []byte("x"), -time.Second); err != nil {
		t.Fatal(err)
	}
	if _, found := c.Get("gone"); found {
		t.Error("expired entry still readable")
	}
}

func TestDiskCacheDefaultTTL(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Minute)
	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if _, found := c.Get("k"); !found {
		t.Error("entry with default TTL not readable")
	}
}

func TestLayeredCachePromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	// seed disk directly, bypassing memory
	disk := NewDiskCache(dir, time.Minute)
	if err := disk.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}

	layered := NewLayeredCache(time.Minute, dir, time.Minute)
	if val, found := layered.Get("k"); !found || string(val) != "v" {
		t.Fatalf("Get(k) = %q, %v", val, found)
	}
	// after promotion a disk delete no longer hides the entry
	if err := disk.Delete("k"); err != nil {
		t.Fatal(err)
	}
	if _, found := layered.Get("k"); !found {
		t.Error("promoted entry lost after disk delete")
	}
}

func TestLayeredCacheDelete(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Minute, dir, time.Minute)
	if err := c.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	_ = c.Delete("k")
	if _, found := c.Get("k"); found {
		t.Error("Get(k) found after Delete")
	}
}
