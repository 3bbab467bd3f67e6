package workload

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultProfileValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default profile should validate: %v", err)
	}
}

func TestLoadOverridesOperationMix(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	doc := `
apiVersion: dbsim/v1
kind: WorkloadProfile
metadata:
  name: write-heavy
spec:
  queryWeights:
    create: 1
    select: 10
    insert: 80
    delete: 10
  operationMix:
    readPercent: 10
    writePercent: 80
    deletePercent: 10
  faultProbability:
    ioWait: 0.0005
  ticks:
    min: 100
    max: 200
  maxTables:
    min: 1
    max: 8
  pageSize: 8192
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatalf("write profile: %v", err)
	}

	profile, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if profile.Spec.OperationMix.WritePercent != 80 {
		t.Fatalf("writePercent = %d, want 80", profile.Spec.OperationMix.WritePercent)
	}
	if profile.Spec.PageSize != 8192 {
		t.Fatalf("pageSize = %d, want 8192", profile.Spec.PageSize)
	}
}

func TestValidateRejectsInvertedRange(t *testing.T) {
	profile := Default()
	profile.Spec.Ticks = Range{Min: 100, Max: 10}
	if err := profile.Validate(); err == nil {
		t.Fatal("expected error for inverted ticks range")
	}
}

func TestValidateRejectsZeroQueryWeights(t *testing.T) {
	profile := Default()
	profile.Spec.QueryWeights = QueryWeights{}
	if err := profile.Validate(); err == nil {
		t.Fatal("expected error for all-zero query weights")
	}
}
