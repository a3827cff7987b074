package crypt

import (
	"context"
	"fmt"
	"reflect"

	"gorm.io/gorm/schema"
)

// Serializer encrypts string columns at rest. Tag a model field with
// `gorm:"serializer:encrypted"` to use it; empty strings are stored as-is.
type Serializer struct{}

func init() {
	schema.RegisterSerializer("encrypted", Serializer{})
}

func (Serializer) Scan(ctx context.Context, field *schema.Field, dst reflect.Value, dbValue interface{}) error {
	var stored string
	switch v := dbValue.(type) {
	case nil:
	case string:
		stored = v
	case []byte:
		stored = string(v)
	default:
		return fmt.Errorf("crypt: unsupported column type %T for %s", dbValue, field.Name)
	}

	plain := ""
	if stored != "" {
		var err error
		if plain, err = Decrypt(stored); err != nil {
			return fmt.Errorf("crypt: scan %s: %w", field.Name, err)
		}
	}

	field.ReflectValueOf(ctx, dst).SetString(plain)
	return nil
}

func (Serializer) Value(_ context.Context, field *schema.Field, _ reflect.Value, fieldValue interface{}) (interface{}, error) {
	s, ok := fieldValue.(string)
	if !ok {
		return nil, fmt.Errorf("crypt: field %s is not a string", field.Name)
	}
	if s == "" {
		return "", nil
	}
	return Encrypt(s)
}
