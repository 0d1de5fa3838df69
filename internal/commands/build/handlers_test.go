package buildcmd

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-press/internal/generator"
)

type fakeService struct {
	buildOpts   *generator.BuildOptions
	buildResult *generator.BuildResult
	buildErr    error
	cleaned     bool
}

func (f *fakeService) Build(_ context.Context, opts generator.BuildOptions) (*generator.BuildResult, error) {
	f.buildOpts = &opts
	return f.buildResult, f.buildErr
}

func (f *fakeService) Clean(context.Context) error {
	f.cleaned = true
	return nil
}

func TestBuildSiteHandlerForwardsOptions(t *testing.T) {
	svc := &fakeService{buildResult: &generator.BuildResult{DocumentsBuilt: 3}}
	handler := NewBuildSiteHandler(svc, nil)

	var envelope ResultEnvelope
	msg := BuildSiteCommand{
		Slugs:          []string{"testing-services"},
		Force:          true,
		ResultCallback: func(env ResultEnvelope) { envelope = env },
	}
	if err := handler.Execute(context.Background(), msg); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if svc.buildOpts == nil {
		t.Fatal("service never invoked")
	}
	if !svc.buildOpts.Force {
		t.Error("Force not forwarded")
	}
	if len(svc.buildOpts.Slugs) != 1 || svc.buildOpts.Slugs[0] != "testing-services" {
		t.Errorf("Slugs = %v", svc.buildOpts.Slugs)
	}
	if envelope.Result == nil || envelope.Result.DocumentsBuilt != 3 {
		t.Errorf("callback envelope = %+v", envelope)
	}
}

func TestBuildSiteHandlerRejectsEmptySlug(t *testing.T) {
	svc := &fakeService{}
	handler := NewBuildSiteHandler(svc, nil)

	err := handler.Execute(context.Background(), BuildSiteCommand{Slugs: []string{" "}})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if svc.buildOpts != nil {
		t.Error("service invoked despite invalid message")
	}
}

func TestBuildSiteHandlerPropagatesError(t *testing.T) {
	boom := errors.New("render failed")
	svc := &fakeService{buildErr: boom}
	handler := NewBuildSiteHandler(svc, nil)

	err := handler.Execute(context.Background(), BuildSiteCommand{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, boom) {
		t.Errorf("error lost cause: %v", err)
	}
}

func TestBuildSiteHandlerWithoutService(t *testing.T) {
	handler := NewBuildSiteHandler(nil, nil)

	err := handler.Execute(context.Background(), BuildSiteCommand{})
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Errorf("err = %v, want ErrServiceUnavailable", err)
	}
}

func TestCleanSiteHandler(t *testing.T) {
	svc := &fakeService{}
	handler := NewCleanSiteHandler(svc, nil)

	if err := handler.Execute(context.Background(), CleanSiteCommand{}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !svc.cleaned {
		t.Error("Clean never invoked")
	}
}
