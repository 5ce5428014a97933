package models

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// StringList decodes fields that legacy documents stored either as a single
// string or as an array of strings. Gallery image lists and product
// categories both went through that shape change, so the codec tolerates
// either form on read and always writes an array.
type StringList []string

func (s *StringList) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.Null:
		*s = nil
		return nil
	case bsontype.String:
		var value string
		if err := bson.UnmarshalValue(t, data, &value); err != nil {
			return err
		}
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			*s = []string{trimmed}
		} else {
			*s = []string{}
		}
		return nil
	case bsontype.Array:
		var values []string
		if err := bson.UnmarshalValue(t, data, &values); err != nil {
			return err
		}
		*s = values
		return nil
	default:
		return fmt.Errorf("cannot decode %s into StringList", t)
	}
}

func (s StringList) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue([]string(s))
}
