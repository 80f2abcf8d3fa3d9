package logging

import (
	"context"
	"maps"
	"testing"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

type recordingLogger struct {
	fields   []map[string]any
	contexts []context.Context
}

func (r *recordingLogger) Trace(string, ...any) {}
func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Info(string, ...any)  {}
func (r *recordingLogger) Warn(string, ...any)  {}
func (r *recordingLogger) Error(string, ...any) {}
func (r *recordingLogger) Fatal(string, ...any) {}

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	r.fields = append(r.fields, maps.Clone(fields))
	return r
}

func (r *recordingLogger) WithContext(ctx context.Context) interfaces.Logger {
	r.contexts = append(r.contexts, ctx)
	return r
}

type stubProvider struct {
	requested []string
	logger    interfaces.Logger
}

func (s *stubProvider) GetLogger(name string) interfaces.Logger {
	s.requested = append(s.requested, name)
	return s.logger
}

func TestModuleLoggerFallsBackToNoOp(t *testing.T) {
	logger := ModuleLogger(nil, "blog.test")
	if _, ok := logger.(noopLogger); !ok {
		t.Fatalf("expected noopLogger fallback, got %T", logger)
	}
	logger = logger.WithContext(context.Background())
	logger.Debug("noop")
}

func TestModuleLoggerUsesProviderAndAnnotatesFields(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	logger := ModuleLogger(provider, postsModule)

	if len(provider.requested) != 1 || provider.requested[0] != postsModule {
		t.Fatalf("expected module %s, got %v", postsModule, provider.requested)
	}
	if len(rec.fields) != 1 {
		t.Fatalf("expected module fields to be applied once, got %d", len(rec.fields))
	}
	if got := rec.fields[0]["module"]; got != postsModule {
		t.Fatalf("expected module field %s, got %v", postsModule, got)
	}
	logger.Info("with provider")
}

func TestModuleLoggerDefaultsToRootModule(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	_ = ModuleLogger(provider, "")

	if len(provider.requested) != 1 || provider.requested[0] != rootModule {
		t.Fatalf("expected default module %s, got %v", rootModule, provider.requested)
	}
}

func TestNamedLoggersRequestTheirModules(t *testing.T) {
	cases := map[string]func(interfaces.LoggerProvider) interfaces.Logger{
		usersModule:    UsersLogger,
		tagsModule:     TagsLogger,
		servicesModule: ServicesLogger,
		authModule:     AuthLogger,
		adminModule:    AdminLogger,
		siteModule:     SiteLogger,
		markdownModule: MarkdownLogger,
		commandsModule: CommandsLogger,
		activityModule: ActivityLogger,
	}
	for module, fn := range cases {
		provider := &stubProvider{logger: &recordingLogger{}}
		_ = fn(provider)
		if len(provider.requested) == 0 || provider.requested[0] != module {
			t.Fatalf("expected %s module request, got %v", module, provider.requested)
		}
	}
}

func TestWithMarkdownContextSkipsEmptyValues(t *testing.T) {
	rec := &recordingLogger{}
	_ = WithMarkdownContext(rec, " posts/hello.md ", "")
	if len(rec.fields) != 1 {
		t.Fatalf("expected one WithFields call, got %d", len(rec.fields))
	}
	if rec.fields[0][fieldMarkdownPath] != "posts/hello.md" {
		t.Fatalf("unexpected path field %v", rec.fields[0])
	}
	if _, ok := rec.fields[0][fieldImportAction]; ok {
		t.Fatalf("expected empty action to be skipped")
	}
}

func TestContextWithFieldsMerges(t *testing.T) {
	ctx := ContextWithFields(context.Background(), map[string]any{"request_id": "a"})
	ctx = ContextWithFields(ctx, map[string]any{"user": "ada"})

	fields := ContextFields(ctx)
	if fields["request_id"] != "a" || fields["user"] != "ada" {
		t.Fatalf("unexpected merged fields %v", fields)
	}
	fields["request_id"] = "mutated"
	if ContextFields(ctx)["request_id"] != "a" {
		t.Fatalf("expected ContextFields to return a copy")
	}
}
