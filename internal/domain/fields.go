package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// FormType selects which field schema a TableKind uses.
type FormType string

const (
	FormActiveCustomers   FormType = "active_customers"
	FormVLRAttached       FormType = "vlr_attached"
	FormDateFormat        FormType = "date_format"
	FormBalanceThreshold  FormType = "balance_threshold"
	FormTargetedCustomers FormType = "targeted_customers"
	FormRewardFromAccount FormType = "reward_from_account"
)

var ErrUnknownFormType = errors.New("unknown form type")

// Fields is the tagged union of per-form input records.
// Values are not validated; empty values are rendered as N/A in summaries.
type Fields interface {
	FormType() FormType
	// ExplicitTableName is the user-supplied table name, possibly empty.
	ExplicitTableName() string
}

// DateFormatMode is the data_format choice of a date_format form.
type DateFormatMode string

const (
	DateBefore DateFormatMode = "before"
	DateAfter  DateFormatMode = "after"
	DateRange  DateFormatMode = "date_range"
)

// Comparison is the operator of a balance_threshold form.
type Comparison string

const (
	CompareEqual              Comparison = "equal_to"
	CompareGreaterThanOrEqual Comparison = "greater_than_or_equal"
	CompareLessThanOrEqual    Comparison = "less_than_or_equal"
	CompareGreaterThan        Comparison = "greater_than"
	CompareLessThan           Comparison = "less_than"
	CompareNotEqual           Comparison = "not_equal"
)

type ActiveCustomersFields struct {
	TableName string `json:"table_name"`
	DataFrom  Date   `json:"data_from,omitzero"`
	ActiveFor string `json:"active_for"`
}

type VLRAttachedFields struct {
	TableName string `json:"table_name"`
	DayFrom   string `json:"day_from"`
	DayTo     string `json:"day_to"`
}

// DateFormatFields uses Date unless DataFormat is date_range, in which case
// DateStart and DateEnd apply.
type DateFormatFields struct {
	TableName  string         `json:"table_name"`
	DataFormat DateFormatMode `json:"data_format"`
	Date       Date           `json:"date,omitzero"`
	DateStart  Date           `json:"date_start,omitzero"`
	DateEnd    Date           `json:"date_end,omitzero"`
}

type BalanceThresholdFields struct {
	TableName        string     `json:"table_name"`
	BalanceThreshold string     `json:"balance_threshold"`
	Comparison       Comparison `json:"comparison"`
}

type TargetedCustomersFields struct {
	TableName       string `json:"table_name"`
	DataFrom        Date   `json:"data_from,omitzero"`
	TargetedForLast string `json:"targeted_for_last"`
}

type RewardFromAccountFields struct {
	TableName     string `json:"table_name"`
	AccountNumber string `json:"account_number"`
}

func (ActiveCustomersFields) FormType() FormType   { return FormActiveCustomers }
func (VLRAttachedFields) FormType() FormType       { return FormVLRAttached }
func (DateFormatFields) FormType() FormType        { return FormDateFormat }
func (BalanceThresholdFields) FormType() FormType  { return FormBalanceThreshold }
func (TargetedCustomersFields) FormType() FormType { return FormTargetedCustomers }
func (RewardFromAccountFields) FormType() FormType { return FormRewardFromAccount }

func (f ActiveCustomersFields) ExplicitTableName() string   { return f.TableName }
func (f VLRAttachedFields) ExplicitTableName() string       { return f.TableName }
func (f DateFormatFields) ExplicitTableName() string        { return f.TableName }
func (f BalanceThresholdFields) ExplicitTableName() string  { return f.TableName }
func (f TargetedCustomersFields) ExplicitTableName() string { return f.TableName }
func (f RewardFromAccountFields) ExplicitTableName() string { return f.TableName }

// IsRange reports whether the date range fields are the active ones.
func (f DateFormatFields) IsRange() bool {
	return f.DataFormat == DateRange
}

// EmptyFields returns the record with every field at its zero value for the form type.
func EmptyFields(ft FormType) (Fields, error) {
	switch ft {
	case FormActiveCustomers:
		return ActiveCustomersFields{}, nil
	case FormVLRAttached:
		return VLRAttachedFields{}, nil
	case FormDateFormat:
		return DateFormatFields{}, nil
	case FormBalanceThreshold:
		return BalanceThresholdFields{}, nil
	case FormTargetedCustomers:
		return TargetedCustomersFields{}, nil
	case FormRewardFromAccount:
		return RewardFromAccountFields{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormType, ft)
	}
}

// DecodeFields unmarshals a JSON object into the record for the given form type.
// Unknown keys are ignored.
func DecodeFields(ft FormType, raw json.RawMessage) (Fields, error) {
	var (
		fields Fields
		err    error
	)
	switch ft {
	case FormActiveCustomers:
		var f ActiveCustomersFields
		err = unmarshalObject(raw, &f)
		fields = f
	case FormVLRAttached:
		var f VLRAttachedFields
		err = unmarshalObject(raw, &f)
		fields = f
	case FormDateFormat:
		var f DateFormatFields
		err = unmarshalObject(raw, &f)
		fields = f
	case FormBalanceThreshold:
		var f BalanceThresholdFields
		err = unmarshalObject(raw, &f)
		fields = f
	case FormTargetedCustomers:
		var f TargetedCustomersFields
		err = unmarshalObject(raw, &f)
		fields = f
	case FormRewardFromAccount:
		var f RewardFromAccountFields
		err = unmarshalObject(raw, &f)
		fields = f
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormType, ft)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid %s fields: %w", ft, err)
	}
	return fields, nil
}

func unmarshalObject(raw json.RawMessage, dst any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
