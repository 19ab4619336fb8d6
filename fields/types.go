package fields

import "hermannm.dev/enumnames"

type Type uint8

const (
	TypeString Type = iota + 1
	TypeNumber
	TypeDate
	TypeBoolean
)

var typeNames = enumnames.NewMap(map[Type]string{
	TypeString:  "string",
	TypeNumber:  "number",
	TypeDate:    "date",
	TypeBoolean: "boolean",
})

func (fieldType Type) IsValid() bool {
	return typeNames.GetNameOrFallback(fieldType, "") != ""
}

func (fieldType Type) String() string {
	return typeNames.GetNameOrFallback(fieldType, "INVALID_FIELD_TYPE")
}

func (fieldType Type) MarshalJSON() ([]byte, error) {
	return typeNames.MarshalToNameJSON(fieldType)
}

func (fieldType *Type) UnmarshalJSON(bytes []byte) error {
	return typeNames.UnmarshalFromNameJSON(bytes, fieldType)
}

// Duration marks a date field whose filter values are given as a number of days relative to today.
type Duration uint8

const (
	DurationBeforeToday Duration = iota + 1
	DurationAfterToday
)

var durationNames = enumnames.NewMap(map[Duration]string{
	DurationBeforeToday: "beforeToday",
	DurationAfterToday:  "afterToday",
})

func (duration Duration) IsValid() bool {
	return durationNames.GetNameOrFallback(duration, "") != ""
}

func (duration Duration) String() string {
	return durationNames.GetNameOrFallback(duration, "INVALID_DURATION")
}

func (duration Duration) MarshalJSON() ([]byte, error) {
	return durationNames.MarshalToNameJSON(duration)
}

func (duration *Duration) UnmarshalJSON(bytes []byte) error {
	return durationNames.UnmarshalFromNameJSON(bytes, duration)
}
