package actions

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/parquetlake/tablelog/pkg/errors"
)

const isoMillisLayout = "2006-01-02T15:04:05.000Z"

// isoMillis marshals/unmarshals a millisecond-precision UTC instant as an
// ISO-8601 string, matching the wire form commitInfo.timestamp uses.
type isoMillis int64

func (t isoMillis) MarshalJSON() ([]byte, error) {
	ts := time.UnixMilli(int64(t)).UTC().Format(isoMillisLayout)
	return json.Marshal(ts)
}

func (t *isoMillis) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.Parse(isoMillisLayout, s)
	if err != nil {
		return err
	}
	*t = isoMillis(parsed.UnixMilli())
	return nil
}

type formatWire struct {
	Provider string            `json:"provider"`
	Options  map[string]string `json:"options"`
}

type metadataWire struct {
	ID               uuid.UUID         `json:"id"`
	Name             string            `json:"name,omitempty"`
	Description      string            `json:"description,omitempty"`
	Format           formatWire        `json:"format"`
	SchemaString     string            `json:"schemaString"`
	PartitionColumns []string          `json:"partitionColumns"`
	Configuration    map[string]string `json:"configuration"`
	CreatedTime      *int64            `json:"createdTime,omitempty"`
}

type protocolWire struct {
	MinReaderVersion int `json:"minReaderVersion"`
	MinWriterVersion int `json:"minWriterVersion"`
}

type addWire struct {
	Path             string            `json:"path"`
	PartitionValues  map[string]string `json:"partitionValues"`
	Size             int64             `json:"size"`
	ModificationTime int64             `json:"modificationTime"`
	DataChange       bool              `json:"dataChange"`
	Stats            *string           `json:"stats,omitempty"`
	Tags             map[string]string `json:"tags,omitempty"`
}

type removeWire struct {
	Path              string `json:"path"`
	DeletionTimestamp *int64 `json:"deletionTimestamp,omitempty"`
	DataChange        bool   `json:"dataChange"`
}

type commitInfoWire struct {
	Version             *int64            `json:"version,omitempty"`
	Timestamp           isoMillis         `json:"timestamp"`
	UserID              string            `json:"userId,omitempty"`
	UserName            string            `json:"userName,omitempty"`
	Operation           string            `json:"operation"`
	OperationParameters map[string]string `json:"operationParameters,omitempty"`
	Job                 string            `json:"job,omitempty"`
	Notebook            string            `json:"notebook,omitempty"`
	ReadVersion         *int64            `json:"readVersion,omitempty"`
	IsolationLevel      string            `json:"isolationLevel,omitempty"`
	IsBlindAppend       *bool             `json:"isBlindAppend,omitempty"`
	OperationMetrics    map[string]string `json:"operationMetrics,omitempty"`
	UserMetadata        string            `json:"userMetadata,omitempty"`
}

var recognizedKeys = map[Kind]struct{}{
	KindMetadata:   {},
	KindProtocol:   {},
	KindAdd:        {},
	KindRemove:     {},
	KindCommitInfo: {},
}

// DecodeLine decodes a single newline-delimited JSON record into an
// Action. A record whose sole top-level key is not one of the five
// recognized variants decodes successfully to KindUnknown, so the
// replay engine can tolerate forward-compatible additions.
func DecodeLine(line []byte) (Action, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return Action{}, errors.New(ErrCodecMalformedJSON, "empty log line", nil)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(line, &raw); err != nil {
		return Action{}, errors.Wrap(ErrCodecMalformedJSON, err, "malformed action record")
	}

	var active Kind
	count := 0
	for key := range raw {
		if _, ok := recognizedKeys[Kind(key)]; ok {
			active = Kind(key)
			count++
		}
	}
	if count > 1 {
		return Action{}, errors.New(ErrCodecMultipleVariant, "record has more than one action variant populated", nil)
	}
	if count == 0 {
		return Action{Kind: KindUnknown}, nil
	}

	payload := raw[string(active)]
	switch active {
	case KindMetadata:
		return decodeMetadata(payload)
	case KindProtocol:
		return decodeProtocol(payload)
	case KindAdd:
		return decodeAdd(payload)
	case KindRemove:
		return decodeRemove(payload)
	case KindCommitInfo:
		return decodeCommitInfo(payload)
	}
	return Action{Kind: KindUnknown}, nil
}

func decodeMetadata(payload json.RawMessage) (Action, error) {
	var w metadataWire
	if err := json.Unmarshal(payload, &w); err != nil {
		return Action{}, errors.Wrap(ErrCodecMalformedJSON, err, "malformed metaData action")
	}
	if w.ID == uuid.Nil {
		return Action{}, errors.New(ErrCodecMissingField, "metaData.id is required", nil)
	}
	if w.PartitionColumns == nil {
		w.PartitionColumns = []string{}
	}
	if w.Configuration == nil {
		w.Configuration = map[string]string{}
	}
	return Action{
		Kind: KindMetadata,
		Metadata: &Metadata{
			ID:               w.ID,
			Name:             w.Name,
			Description:      w.Description,
			Format:           Format{Provider: w.Format.Provider, Options: w.Format.Options},
			SchemaString:     w.SchemaString,
			PartitionColumns: w.PartitionColumns,
			Configuration:    w.Configuration,
			CreatedTime:      w.CreatedTime,
		},
	}, nil
}

func decodeProtocol(payload json.RawMessage) (Action, error) {
	var w protocolWire
	if err := json.Unmarshal(payload, &w); err != nil {
		return Action{}, errors.Wrap(ErrCodecMalformedJSON, err, "malformed protocol action")
	}
	return Action{
		Kind: KindProtocol,
		Protocol: &Protocol{
			MinReaderVersion: w.MinReaderVersion,
			MinWriterVersion: w.MinWriterVersion,
		},
	}, nil
}

func decodeAdd(payload json.RawMessage) (Action, error) {
	var w addWire
	if err := json.Unmarshal(payload, &w); err != nil {
		return Action{}, errors.Wrap(ErrCodecMalformedJSON, err, "malformed add action")
	}
	if w.Path == "" {
		return Action{}, errors.New(ErrCodecMissingField, "add.path is required", nil)
	}
	if w.PartitionValues == nil {
		w.PartitionValues = map[string]string{}
	}
	return Action{
		Kind: KindAdd,
		Add: &AddFile{
			Path:             w.Path,
			PartitionValues:  w.PartitionValues,
			Size:             w.Size,
			ModificationTime: w.ModificationTime,
			DataChange:       w.DataChange,
			Stats:            w.Stats,
			Tags:             w.Tags,
		},
	}, nil
}

func decodeRemove(payload json.RawMessage) (Action, error) {
	var w removeWire
	if err := json.Unmarshal(payload, &w); err != nil {
		return Action{}, errors.Wrap(ErrCodecMalformedJSON, err, "malformed remove action")
	}
	if w.Path == "" {
		return Action{}, errors.New(ErrCodecMissingField, "remove.path is required", nil)
	}
	return Action{
		Kind: KindRemove,
		Remove: &RemoveFile{
			Path:              w.Path,
			DeletionTimestamp: w.DeletionTimestamp,
			DataChange:        w.DataChange,
		},
	}, nil
}

func decodeCommitInfo(payload json.RawMessage) (Action, error) {
	var w commitInfoWire
	if err := json.Unmarshal(payload, &w); err != nil {
		return Action{}, errors.Wrap(ErrCodecMalformedJSON, err, "malformed commitInfo action")
	}
	return Action{
		Kind: KindCommitInfo,
		CommitInfo: &CommitInfo{
			Version:             w.Version,
			Timestamp:           int64(w.Timestamp),
			UserID:              w.UserID,
			UserName:            w.UserName,
			Operation:           w.Operation,
			OperationParameters: w.OperationParameters,
			Job:                 w.Job,
			Notebook:            w.Notebook,
			ReadVersion:         w.ReadVersion,
			IsolationLevel:      w.IsolationLevel,
			IsBlindAppend:       w.IsBlindAppend,
			OperationMetrics:    w.OperationMetrics,
			UserMetadata:        w.UserMetadata,
		},
	}, nil
}

// Encode serializes an Action back to its single-key JSON wire form.
func Encode(a Action) ([]byte, error) {
	populated := 0
	for _, set := range []bool{a.Metadata != nil, a.Protocol != nil, a.Add != nil, a.Remove != nil, a.CommitInfo != nil} {
		if set {
			populated++
		}
	}
	if populated > 1 {
		return nil, errors.New(ErrCodecMultipleVariant, "action has more than one variant populated", nil)
	}
	switch a.Kind {
	case KindMetadata:
		if a.Metadata == nil {
			return nil, errors.New(ErrCodecMissingField, "metaData action missing payload", nil)
		}
		m := a.Metadata
		w := metadataWire{
			ID:               m.ID,
			Name:             m.Name,
			Description:      m.Description,
			Format:           formatWire{Provider: m.Format.Provider, Options: m.Format.Options},
			SchemaString:     m.SchemaString,
			PartitionColumns: m.PartitionColumns,
			Configuration:    m.Configuration,
			CreatedTime:      m.CreatedTime,
		}
		if w.PartitionColumns == nil {
			w.PartitionColumns = []string{}
		}
		if w.Configuration == nil {
			w.Configuration = map[string]string{}
		}
		return json.Marshal(map[string]metadataWire{"metaData": w})
	case KindProtocol:
		if a.Protocol == nil {
			return nil, errors.New(ErrCodecMissingField, "protocol action missing payload", nil)
		}
		p := a.Protocol
		return json.Marshal(map[string]protocolWire{
			"protocol": {MinReaderVersion: p.MinReaderVersion, MinWriterVersion: p.MinWriterVersion},
		})
	case KindAdd:
		if a.Add == nil {
			return nil, errors.New(ErrCodecMissingField, "add action missing payload", nil)
		}
		f := a.Add
		pv := f.PartitionValues
		if pv == nil {
			pv = map[string]string{}
		}
		return json.Marshal(map[string]addWire{"add": {
			Path:             f.Path,
			PartitionValues:  pv,
			Size:             f.Size,
			ModificationTime: f.ModificationTime,
			DataChange:       f.DataChange,
			Stats:            f.Stats,
			Tags:             f.Tags,
		}})
	case KindRemove:
		if a.Remove == nil {
			return nil, errors.New(ErrCodecMissingField, "remove action missing payload", nil)
		}
		r := a.Remove
		return json.Marshal(map[string]removeWire{"remove": {
			Path:              r.Path,
			DeletionTimestamp: r.DeletionTimestamp,
			DataChange:        r.DataChange,
		}})
	case KindCommitInfo:
		if a.CommitInfo == nil {
			return nil, errors.New(ErrCodecMissingField, "commitInfo action missing payload", nil)
		}
		c := a.CommitInfo
		return json.Marshal(map[string]commitInfoWire{"commitInfo": {
			Version:             c.Version,
			Timestamp:           isoMillis(c.Timestamp),
			UserID:              c.UserID,
			UserName:            c.UserName,
			Operation:           c.Operation,
			OperationParameters: c.OperationParameters,
			Job:                 c.Job,
			Notebook:            c.Notebook,
			ReadVersion:         c.ReadVersion,
			IsolationLevel:      c.IsolationLevel,
			IsBlindAppend:       c.IsBlindAppend,
			OperationMetrics:    c.OperationMetrics,
			UserMetadata:        c.UserMetadata,
		}})
	default:
		return nil, errors.Newf(ErrCodecMissingField, "cannot encode action of kind %q", a.Kind)
	}
}

// DecodeStream reads a newline-delimited batch of action records and
// invokes fn for each in order, stopping at the first decode error.
func DecodeStream(r io.Reader, fn func(Action) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		action, err := DecodeLine(line)
		if err != nil {
			return err
		}
		if err := fn(action); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrap(ErrCodecMalformedJSON, err, "failed reading action stream")
	}
	return nil
}
