package sinks

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRegistryEnabledFilter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sinks.yaml")
	raw := `
sinks:
  - id: hook
    type: http
    enabled: false
    http:
      url: https://example.com
  - id: queue
    type: sqs
    kinds: [Error, warning]
    sqs:
      uri: https://sqs.example.com/queue
      region: ap-south-1
      access_key_id: " AKIA "
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	enabled := reg.Enabled()
	if len(enabled) != 1 || enabled[0].ID != "queue" {
		t.Fatalf("expected only queue enabled, got %#v", enabled)
	}
	q := enabled[0]
	if q.SQS.Region != "ap-south-1" || q.SQS.AccessKeyID != "AKIA" {
		t.Fatalf("inline aws config not decoded: %#v", q.SQS)
	}
	if len(q.Kinds) != 2 || q.Kinds[0] != "error" {
		t.Fatalf("kinds not normalized: %v", q.Kinds)
	}
	if _, ok := reg.ByID("hook"); !ok {
		t.Fatalf("ByID should find disabled sinks too")
	}
}

func TestLoadRegistryRejectsDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sinks.json")
	raw := `{"sinks":[{"id":"a","type":"log"},{"id":"a","type":"log"}]}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := LoadRegistry(path); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestValidateSinkConfig(t *testing.T) {
	bad := []SinkConfig{
		{ID: "h1", Type: TypeHTTP},
		{ID: "s1", Type: TypeSNS, SNS: &SNSSinkConfig{TopicARN: "arn"}},
		{ID: "p1", Type: TypePubSub, PubSub: &PubSubSinkConfig{ProjectID: "p"}},
		{ID: "l1", Type: TypeLog, Kinds: []string{"toast"}},
	}
	for _, cfg := range bad {
		if err := validateSinkConfig(cfg); err == nil {
			t.Fatalf("expected validation error for %#v", cfg)
		}
	}
}
