// field_helpers.go: Field helper functions for structured log fields
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"fmt"
	"strconv"
	"time"
)

// =============================================================================
// Field Validation and Conversion Helpers
// =============================================================================

// ValidateField checks if a field is valid and safe to use
func ValidateField(field Field) error {
	if field.Key == "" {
		return fmt.Errorf("field key cannot be empty")
	}

	if !isValidFieldType(field.Type) {
		return fmt.Errorf("invalid field type: %d", field.Type)
	}

	return nil
}

// isValidFieldType checks if the field type is supported
func isValidFieldType(fieldType FieldType) bool {
	switch fieldType {
	case StringType, IntType, Int64Type, Int32Type, Int16Type, Int8Type,
		UintType, Uint64Type, Uint32Type, Uint16Type, Uint8Type,
		Float64Type, Float32Type, BoolType, TimeType, DurationType,
		ErrorType, BinaryType, ByteStringType, AnyType, SecretType:
		return true
	default:
		return false
	}
}

// =============================================================================
// Field Value Extraction Helpers
// =============================================================================

// GetFieldValue returns the value of a field as an interface{}
func GetFieldValue(field Field) interface{} {
	switch field.Type {
	case StringType:
		return field.String
	case IntType, Int64Type, Int32Type, Int16Type, Int8Type:
		return field.Int
	case UintType, Uint64Type, Uint32Type, Uint16Type, Uint8Type:
		// Use safe conversion for encoding
		value, _ := SafeInt64ToUint64ForEncoding(field.Int)
		return value
	case Float64Type, Float32Type:
		return field.Float
	case BoolType:
		return field.Bool
	case TimeType:
		return time.Unix(0, field.Int)
	case DurationType:
		return time.Duration(field.Int)
	case ErrorType:
		return field.Err
	case BinaryType, ByteStringType:
		return field.Bytes
	case AnyType:
		return field.Any
	case SecretType:
		// Security: never surface the real value through the typed
		// accessor either, matching GetFieldString's redaction.
		return "[REDACTED]"
	default:
		return nil
	}
}

// GetFieldString returns the string representation of a field's value
func GetFieldString(field Field) string {
	switch field.Type {
	case StringType:
		return field.String
	case IntType, Int64Type, Int32Type, Int16Type, Int8Type:
		return strconv.FormatInt(field.Int, 10)
	case UintType, Uint64Type, Uint32Type, Uint16Type, Uint8Type:
		// Use safe conversion for string formatting
		value, _ := SafeInt64ToUint64ForEncoding(field.Int)
		return strconv.FormatUint(value, 10)
	case Float64Type, Float32Type:
		return strconv.FormatFloat(field.Float, 'g', -1, 64)
	case BoolType:
		return strconv.FormatBool(field.Bool)
	case TimeType:
		return time.Unix(0, field.Int).Format(time.RFC3339Nano)
	case DurationType:
		return time.Duration(field.Int).String()
	case ErrorType:
		if field.Err != nil {
			return field.Err.Error()
		}
		return ""
	case BinaryType:
		return fmt.Sprintf("binary[%d]", len(field.Bytes))
	case ByteStringType:
		return string(field.Bytes)
	case AnyType:
		return fmt.Sprintf("%v", field.Any)
	case SecretType:
		return "[REDACTED]"
	default:
		return ""
	}
}

// =============================================================================
// Safe Type Conversion Helpers (THREAD-SAFE, LOCK-FREE)
// =============================================================================

// SafeUint64ToInt64 safely converts uint64 to int64, checking for overflow
// Returns the converted value and true if conversion is safe
func SafeUint64ToInt64(value uint64) (int64, bool) {
	const maxInt64 = 1<<63 - 1 // 9223372036854775807
	if value > maxInt64 {
		return 0, false
	}
	return int64(value), true
}

// SafeUintToInt64 safely converts uint to int64, checking for overflow
func SafeUintToInt64(value uint) (int64, bool) {
	return SafeUint64ToInt64(uint64(value))
}

// SafeInt64ToUint64ForEncoding safely converts int64 to uint64 for encoding purposes
// This is specifically for encoding/serialization where we need uint64 representation
// Returns the converted value and a flag indicating if it's a negative value stored in 2's complement
func SafeInt64ToUint64ForEncoding(value int64) (uint64, bool) {
	if value >= 0 {
		return uint64(value), false // Positive value, direct conversion
	}
	// For negative values, we use two's complement representation
	// This is safe for encoding because we'll decode it back correctly
	return uint64(value), true // #nosec G115 - Safe two's complement for encoding
}
