package actions

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAddFile(t *testing.T) {
	line := []byte(`{"add":{"path":"a/f1","partitionValues":{},"size":10,"modificationTime":1000,"dataChange":true}}`)
	action, err := DecodeLine(line)
	require.NoError(t, err)
	require.Equal(t, KindAdd, action.Kind)
	assert.Equal(t, "a/f1", action.Add.Path)
	assert.Equal(t, int64(10), action.Add.Size)
	assert.NotNil(t, action.Add.PartitionValues)
}

func TestDecodeAddFileRequiresPath(t *testing.T) {
	line := []byte(`{"add":{"path":"","size":10,"modificationTime":1,"dataChange":true}}`)
	_, err := DecodeLine(line)
	assert.Error(t, err)
}

func TestDecodeRejectsMultipleVariants(t *testing.T) {
	line := []byte(`{"add":{"path":"a","size":1,"modificationTime":1,"dataChange":true},"remove":{"path":"a","dataChange":true}}`)
	_, err := DecodeLine(line)
	assert.Error(t, err)
}

func TestDecodeUnknownVariantIsTolerated(t *testing.T) {
	line := []byte(`{"cdc":{"path":"a"}}`)
	action, err := DecodeLine(line)
	require.NoError(t, err)
	assert.Equal(t, KindUnknown, action.Kind)
}

func TestDecodeMalformedJSON(t *testing.T) {
	_, err := DecodeLine([]byte(`not json`))
	assert.Error(t, err)
}

// TestActionRoundTrip covers property 2 from spec.md §8: decode(encode(a)) == a.
func TestActionRoundTrip(t *testing.T) {
	ts := int64(1)
	deletion := int64(2000)
	blind := true

	cases := []Action{
		{Kind: KindProtocol, Protocol: &Protocol{MinReaderVersion: 1, MinWriterVersion: 2}},
		{Kind: KindAdd, Add: &AddFile{
			Path:             "col=foo%20bar/part.parquet",
			PartitionValues:  map[string]string{"col": "foo bar"},
			Size:             128,
			ModificationTime: 1700000000000,
			DataChange:       true,
			Tags:             map[string]string{"k": "v"},
		}},
		{Kind: KindRemove, Remove: &RemoveFile{
			Path:              "a/f1",
			DeletionTimestamp: &deletion,
			DataChange:        true,
		}},
		{Kind: KindMetadata, Metadata: &Metadata{
			ID:               uuid.New(),
			Name:             "events",
			Format:           Format{Provider: "parquet", Options: map[string]string{}},
			SchemaString:     `{"type":"struct","fields":[]}`,
			PartitionColumns: []string{"col"},
			Configuration:    map[string]string{"delta.appendOnly": "true"},
			CreatedTime:      &ts,
		}},
		{Kind: KindCommitInfo, CommitInfo: &CommitInfo{
			Timestamp:           1700000000000,
			Operation:           "WRITE",
			OperationParameters: map[string]string{"mode": `"Append"`},
			IsBlindAppend:       &blind,
		}},
	}

	for _, want := range cases {
		encoded, err := Encode(want)
		require.NoError(t, err)
		got, err := DecodeLine(encoded)
		require.NoError(t, err)
		assert.Equal(t, want, got, "round trip for kind %s", want.Kind)
	}
}

func TestAddFilePartitionValuesAlwaysSerialized(t *testing.T) {
	encoded, err := Encode(Action{Kind: KindAdd, Add: &AddFile{
		Path:             "p",
		Size:             1,
		ModificationTime: 1,
		DataChange:       true,
	}})
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(encoded), `"partitionValues":{}`))
}

func TestOperationParametersAreWrittenVerbatim(t *testing.T) {
	encoded, err := Encode(Action{Kind: KindCommitInfo, CommitInfo: &CommitInfo{
		Timestamp:           0,
		Operation:           "WRITE",
		OperationParameters: map[string]string{"mode": `"Append"`, "predicate": `["x = 1"]`},
	}})
	require.NoError(t, err)

	decoded, err := DecodeLine(encoded)
	require.NoError(t, err)
	assert.Equal(t, `"Append"`, decoded.CommitInfo.OperationParameters["mode"])
	assert.Equal(t, `["x = 1"]`, decoded.CommitInfo.OperationParameters["predicate"])
}

func TestCommitInfoGetVersionOptional(t *testing.T) {
	c := CommitInfo{}
	_, ok := c.GetVersion()
	assert.False(t, ok)

	v := int64(5)
	c.Version = &v
	got, ok := c.GetVersion()
	assert.True(t, ok)
	assert.Equal(t, int64(5), got)
}

func TestDecodeStreamStopsOnFirstError(t *testing.T) {
	r := strings.NewReader("{\"protocol\":{\"minReaderVersion\":1,\"minWriterVersion\":1}}\nnot json\n{\"protocol\":{\"minReaderVersion\":2,\"minWriterVersion\":2}}\n")
	var seen []Action
	err := DecodeStream(r, func(a Action) error {
		seen = append(seen, a)
		return nil
	})
	assert.Error(t, err)
	require.Len(t, seen, 1)
	assert.Equal(t, 1, seen[0].Protocol.MinReaderVersion)
}
