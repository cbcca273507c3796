package config

import "testing"

func validPipeline() PipelineConfig {
	p := pipelineDefaults()
	p.Name = "display-1"
	p.ListenPort = 9100
	p.TargetWidth = 320
	p.TargetHeight = 240
	p.Source = SourceMock
	return p
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	cfg := &GlobalConfig{Pipelines: []PipelineConfig{validPipeline()}}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejectsNoPipelines(t *testing.T) {
	cfg := &GlobalConfig{}
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for zero pipelines")
	}
}

func TestValidateRejectsUnknownSource(t *testing.T) {
	p := validPipeline()
	p.Source = Source("laser_projector")
	cfg := &GlobalConfig{Pipelines: []PipelineConfig{p}}
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for unknown source")
	}
}

func TestValidateRejectsDuplicatePorts(t *testing.T) {
	p1 := validPipeline()
	p2 := validPipeline()
	p2.Name = "display-2"
	cfg := &GlobalConfig{Pipelines: []PipelineConfig{p1, p2}}
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for duplicate listen_port")
	}
}

func TestValidateRejectsBadThresholdBounds(t *testing.T) {
	p := validPipeline()
	p.MinDiffThreshold = 100
	p.MaxDiffThreshold = 50
	cfg := &GlobalConfig{Pipelines: []PipelineConfig{p}}
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for max < min threshold")
	}
}

func TestApplyPipelineDefaultsBackfillsZeroFields(t *testing.T) {
	p := PipelineConfig{Name: "x", ListenPort: 1, TargetWidth: 1, TargetHeight: 1, Source: SourceMock}
	applyPipelineDefaults(&p, pipelineDefaults())
	if p.TargetFPS != 10 {
		t.Fatalf("TargetFPS = %v, want default 10", p.TargetFPS)
	}
	if p.QueueCapacity != 5 {
		t.Fatalf("QueueCapacity = %v, want default 5", p.QueueCapacity)
	}
	if p.WBScale != (WhiteBalance{R: 1, G: 1, B: 1}) {
		t.Fatalf("WBScale = %+v, want 1,1,1", p.WBScale)
	}
}

func TestSourceValid(t *testing.T) {
	for _, s := range []Source{SourceMock, SourceScreenRegion, SourceWindowTitle, SourceCPUMonitor, SourceMetricsDashboard} {
		if !s.valid() {
			t.Fatalf("%q should be valid", s)
		}
	}
	if Source("nonsense").valid() {
		t.Fatal("unknown source should not be valid")
	}
}
