package core

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

var descriptorStyle = &pretty.Options{
	Width:    80,
	Prefix:   "",
	Indent:   "\t",
	SortKeys: false,
}

// MergeDescriptor sets the pointer field of an existing descriptor and keeps
// every other field. A missing descriptor starts from an empty object. When
// the existing content is not a JSON object the result is a fresh descriptor
// and the returned error wraps ErrDescriptorMerge.
func MergeDescriptor(existing []byte, pointer string) ([]byte, error) {
	var mergeErr error

	base := existing
	if len(base) == 0 {
		base = []byte("{}")
	} else if !gjson.ValidBytes(base) || !gjson.ParseBytes(base).IsObject() {
		mergeErr = fmt.Errorf("%w: existing descriptor is not a JSON object", ErrDescriptorMerge)
		base = []byte("{}")
	}

	updated, err := sjson.SetBytes(base, DescriptorMainKey, pointer)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDescriptorMerge, err)
	}

	return pretty.PrettyOptions(updated, descriptorStyle), mergeErr
}

// DescriptorPointer reads the pointer field of a descriptor.
func DescriptorPointer(descriptor []byte) string {
	return gjson.GetBytes(descriptor, DescriptorMainKey).String()
}
