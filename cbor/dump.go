// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cbor

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"slices"
)

// DumpStructure renders a generic value tree as produced by Value, one item per line
// with nested items indented below their parent
func DumpStructure(data any, prefix string) string {
	var ret bytes.Buffer
	switch v := data.(type) {
	case int, uint, int16, uint16, int32, uint32, int64, uint64:
		return fmt.Sprintf("%s0x%x (%d),\n", prefix, v, v)
	case []byte:
		return fmt.Sprintf("%s<bytes> (length %d),\n", prefix, len(v))
	case ByteString:
		return fmt.Sprintf("%s<bytes> (length %d),\n", prefix, len(v.Bytes()))
	case []any:
		ret.WriteString(prefix + "[\n")
		for _, val := range v {
			ret.WriteString(DumpStructure(val, prefix+"  "))
		}
		ret.WriteString(prefix + "],\n")
	case map[any]any:
		ret.WriteString(prefix + "{\n")
		// Map iteration order is random
		keys := make([]any, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		slices.SortFunc(keys, func(a, b any) int {
			return bytes.Compare(
				[]byte(fmt.Sprintf("%v", a)),
				[]byte(fmt.Sprintf("%v", b)),
			)
		})
		for _, key := range keys {
			ret.WriteString(fmt.Sprintf("%s  %#v =>\n", prefix, key))
			ret.WriteString(DumpStructure(v[key], prefix+"    "))
		}
		ret.WriteString(prefix + "},\n")
	default:
		return fmt.Sprintf("%s%#v,\n", prefix, v)
	}
	return ret.String()
}

// DumpBytes decodes raw CBOR and renders it with DumpStructure. Data that is not valid
// CBOR is returned hex encoded
func DumpBytes(data []byte) string {
	var tmp Value
	if _, err := Decode(data, &tmp); err != nil {
		return hex.EncodeToString(data)
	}
	return DumpStructure(tmp.Value, "")
}
