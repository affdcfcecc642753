package lists

import (
	"encoding/json"

	apperrors "github.com/jrsteele09/lia-server/internal/errors"
	"github.com/pkg/errors"
)

// immutableItemFields cannot be changed by a deep update.
var immutableItemFields = map[string]struct{}{
	"id":       {},
	"list_id":  {},
	"added_by": {},
}

// ApplyUpdate merges patch into item and returns the result. Keys that are
// not item fields are ignored, nested objects are merged recursively and any
// other value replaces the existing one.
func ApplyUpdate(item *Item, patch map[string]any) (*Item, error) {
	current, err := toMap(item)
	if err != nil {
		return nil, errors.Wrap(err, "[ApplyUpdate] failed to encode item")
	}

	for key, value := range patch {
		if _, immutable := immutableItemFields[key]; immutable {
			continue
		}
		if _, known := current[key]; !known {
			continue
		}
		current[key] = merge(current[key], value)
	}

	data, err := json.Marshal(current)
	if err != nil {
		return nil, errors.Wrap(err, "[ApplyUpdate] failed to encode merged item")
	}
	var updated Item
	if err := json.Unmarshal(data, &updated); err != nil {
		return nil, errors.Wrap(apperrors.ErrInvalidInput, "item update has the wrong shape: "+err.Error())
	}
	return &updated, nil
}

func merge(dst, src any) any {
	srcMap, srcIsMap := src.(map[string]any)
	dstMap, dstIsMap := dst.(map[string]any)
	if !srcIsMap || !dstIsMap {
		return src
	}
	for key, value := range srcMap {
		if _, known := dstMap[key]; !known {
			continue
		}
		dstMap[key] = merge(dstMap[key], value)
	}
	return dstMap
}

func toMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
