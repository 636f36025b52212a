package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/mhpenta/lynx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Backends ---

func testBackend(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := b.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, b.Set(ctx, "k", "v1"))
	require.NoError(t, b.Set(ctx, "k", "v2"))

	v, ok, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", v)

	assert.ErrorIs(t, b.Set(ctx, "", "v"), ErrInvalidKey)
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	testBackend(t, m)
	assert.Equal(t, map[string]string{"k": "v2"}, m.Snapshot())
}

func TestFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	f := NewFile(dir)
	testBackend(t, f)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files are cleaned up")
	assert.Equal(t, "k.json", entries[0].Name())
}

func TestFile_RejectsPathKeys(t *testing.T) {
	f := NewFile(t.TempDir())
	for _, key := range []string{"../escape", "a/b", ".hidden"} {
		assert.ErrorIs(t, f.Set(context.Background(), key, "v"), ErrInvalidKey, key)
		_, _, err := f.Get(context.Background(), key)
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

type fakeDynamo struct {
	items  map[string]map[string]types.AttributeValue
	tables []string
	err    error
}

func (f *fakeDynamo) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tables = append(f.tables, aws.ToString(in.TableName))
	pk := in.Key["PK"].(*types.AttributeValueMemberS).Value
	return &dynamodb.GetItemOutput{Item: f.items[pk]}, nil
}

func (f *fakeDynamo) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tables = append(f.tables, aws.ToString(in.TableName))
	pk := in.Item["PK"].(*types.AttributeValueMemberS).Value
	f.items[pk] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func TestDynamoDB(t *testing.T) {
	fake := &fakeDynamo{items: map[string]map[string]types.AttributeValue{}}
	d := NewDynamoDB(fake, "lynx-kv")
	d.now = func() time.Time { return time.UnixMilli(1700000000000) }

	testBackend(t, d)

	for _, table := range fake.tables {
		assert.Equal(t, "lynx-kv", table)
	}
	item := fake.items["k"]
	require.NotNil(t, item)
	assert.Equal(t, "v2", item["Value"].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "1700000000000", item["UpdatedAt"].(*types.AttributeValueMemberN).Value)
}

func TestDynamoDB_Error(t *testing.T) {
	boom := errors.New("throttled")
	d := NewDynamoDB(&fakeDynamo{err: boom}, "t")

	_, _, err := d.Get(context.Background(), "k")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, d.Set(context.Background(), "k", "v"), boom)
}

// --- History ---

func sampleHistory() []lynx.GeneratedImage {
	return []lynx.GeneratedImage{
		{
			ID:        "b",
			URL:       "data:image/png;base64,Yg==",
			Prompt:    "a red fox in snow",
			Settings:  lynx.DefaultSettings(),
			CreatedAt: 1763631000000,
		},
		{
			ID:     "a",
			URL:    "data:image/jpeg;base64,YQ==",
			Prompt: "skyline",
			Settings: lynx.GenerationSettings{
				Model:          lynx.ModelPro,
				AspectRatio:    lynx.AspectRatio16x9,
				ImageSize:      lynx.ImageSize4K,
				NumberOfImages: 1,
			},
			CreatedAt: 1763630000000,
		},
	}
}

func TestHistory_RoundTrip(t *testing.T) {
	ctx := context.Background()
	h := NewHistory(NewMemory(), WithLogger(discardLogger()))

	want := sampleHistory()
	require.NoError(t, h.Save(ctx, want))

	got, err := h.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestHistory_FileRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	require.NoError(t, NewHistory(NewFile(dir)).Save(ctx, sampleHistory()))

	got, err := NewHistory(NewFile(dir)).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleHistory(), got)
	assert.FileExists(t, filepath.Join(dir, DefaultKey+".json"))
}

func TestHistory_Layout(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	h := NewHistory(mem)

	require.NoError(t, h.Save(ctx, sampleHistory()[:1]))
	assert.JSONEq(t, `[{
		"id": "b",
		"url": "data:image/png;base64,Yg==",
		"prompt": "a red fox in snow",
		"settings": {"model": "gemini-2.5-flash-image", "aspectRatio": "1:1", "imageSize": "1K", "numberOfImages": 1},
		"createdAt": 1763631000000
	}]`, mem.Snapshot()[DefaultKey])

	require.NoError(t, h.Save(ctx, nil))
	assert.Equal(t, "[]", mem.Snapshot()[DefaultKey])
}

func TestHistory_LoadEmpty(t *testing.T) {
	tests := []struct {
		name  string
		value *string
	}{
		{name: "missing key"},
		{name: "empty value", value: aws.String("")},
		{name: "malformed json", value: aws.String("{not json")},
		{name: "wrong shape", value: aws.String(`{"id":"x"}`)},
		{name: "null", value: aws.String("null")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := NewMemory()
			if tt.value != nil {
				require.NoError(t, mem.Set(context.Background(), DefaultKey, *tt.value))
			}

			got, err := NewHistory(mem, WithLogger(discardLogger())).Load(context.Background())
			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestHistory_DropsDuplicateIDs(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	require.NoError(t, mem.Set(ctx, DefaultKey,
		`[{"id":"a","prompt":"first"},{"id":"b"},{"id":"a","prompt":"second"}]`))

	got, err := NewHistory(mem, WithLogger(discardLogger())).Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Prompt)
	assert.Equal(t, "b", got[1].ID)
}

func TestHistory_CustomKey(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	h := NewHistory(mem, WithKey("other"))
	assert.Equal(t, "other", h.Key())

	require.NoError(t, h.Save(ctx, sampleHistory()))
	_, ok, _ := mem.Get(ctx, DefaultKey)
	assert.False(t, ok)
}

type failingBackend struct{ err error }

func (f failingBackend) Get(context.Context, string) (string, bool, error) { return "", false, f.err }
func (f failingBackend) Set(context.Context, string, string) error         { return f.err }

func TestHistory_BackendErrors(t *testing.T) {
	boom := errors.New("disk full")
	h := NewHistory(failingBackend{err: boom})

	_, err := h.Load(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, h.Save(context.Background(), sampleHistory()), boom)

	_, err = NewHistory(nil).Load(context.Background())
	assert.ErrorIs(t, err, lynx.ErrStorageNotConfigured)
}

type stubGenerator struct{ n int }

func (g *stubGenerator) Generate(ctx context.Context, prompt string, s lynx.GenerationSettings) ([]string, error) {
	urls := make([]string, g.n)
	for i := range urls {
		urls[i] = lynx.EncodeDataURI("image/png", []byte{byte(i)})
	}
	return urls, nil
}

func (g *stubGenerator) Tiers() []lynx.TierInfo { return nil }
func (g *stubGenerator) Close() error           { return nil }

func TestHistory_AppRestart(t *testing.T) {
	ctx := context.Background()
	backend := NewFile(t.TempDir())

	app := lynx.New(ctx, &stubGenerator{n: 2},
		lynx.WithStore(NewHistory(backend)),
		lynx.WithLogger(discardLogger()))
	_, err := app.Submit(ctx, "first")
	require.NoError(t, err)
	_, err = app.Submit(ctx, "second")
	require.NoError(t, err)
	require.Len(t, app.History(), 4)

	reopened := lynx.New(ctx, &stubGenerator{},
		lynx.WithStore(NewHistory(backend)),
		lynx.WithLogger(discardLogger()))
	assert.Equal(t, app.History(), reopened.History())

	removed := reopened.History()[1]
	require.True(t, reopened.DeleteImage(ctx, removed.ID))

	again := lynx.New(ctx, &stubGenerator{},
		lynx.WithStore(NewHistory(backend)),
		lynx.WithLogger(discardLogger()))
	require.Len(t, again.History(), 3)
	for _, img := range again.History() {
		assert.NotEqual(t, removed.ID, img.ID)
	}
}

// flakyBackend fails the first failGets reads.
type flakyBackend struct {
	*Memory
	failGets int
}

func (f *flakyBackend) Get(ctx context.Context, key string) (string, bool, error) {
	if f.failGets > 0 {
		f.failGets--
		return "", false, errors.New("ProvisionedThroughputExceededException")
	}
	return f.Memory.Get(ctx, key)
}

func TestHistory_FailedStartupReadKeepsStoredHistory(t *testing.T) {
	ctx := context.Background()
	backend := &flakyBackend{Memory: NewMemory()}
	require.NoError(t, NewHistory(backend).Save(ctx, sampleHistory()))

	backend.failGets = 1
	app := lynx.New(ctx, &stubGenerator{n: 1},
		lynx.WithStore(NewHistory(backend, WithLogger(discardLogger()))),
		lynx.WithLogger(discardLogger()))
	require.Error(t, app.LoadErr())

	_, err := app.Submit(ctx, "new")
	require.NoError(t, err)

	got, err := NewHistory(backend).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleHistory(), got)
}
