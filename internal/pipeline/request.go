package pipeline

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/pts-radar/internal/config"
	"github.com/jonathan/pts-radar/internal/parsing"
	"github.com/jonathan/pts-radar/internal/types"
)

// Request field names, as they appear on the CLI and in API query strings.
const (
	FieldPctMin   = "pct_min"
	FieldVolMin   = "vol_min"
	FieldMaxPages = "max_pages"
)

var validate = validator.New()

// fieldNames maps RunParams fields to request field names.
var fieldNames = map[string]string{
	"PctThreshold": FieldPctMin,
	"VolumeFloor":  FieldVolMin,
	"MaxPages":     FieldMaxPages,
}

// ParseRequest turns the three request texts into RunParams. Text is parsed
// leniently (full-width digits, thousands separators, a trailing %), then
// range checked. Every failure is an *InputError.
func ParseRequest(pctText, volumeText, pagesText string, fullScan bool) (types.RunParams, error) {
	pct, err := parsing.ParsePercent(pctText)
	if err != nil {
		return types.RunParams{}, &InputError{Field: FieldPctMin, Value: pctText, Message: "percentage threshold could not be parsed"}
	}

	vol, err := parsing.ParseInt(volumeText)
	if err != nil {
		return types.RunParams{}, &InputError{Field: FieldVolMin, Value: volumeText, Message: "volume floor could not be parsed"}
	}

	pages, err := parsing.ParseInt(pagesText)
	if err != nil {
		return types.RunParams{}, &InputError{Field: FieldMaxPages, Value: pagesText, Message: "page ceiling could not be parsed"}
	}
	if pages > config.MaxPagesLimit {
		return types.RunParams{}, &InputError{
			Field:   FieldMaxPages,
			Value:   pagesText,
			Message: fmt.Sprintf("page ceiling must be between 1 and %d", config.MaxPagesLimit),
		}
	}

	params := types.RunParams{
		PctThreshold: pct,
		VolumeFloor:  vol,
		MaxPages:     int(pages),
		FullScan:     fullScan,
	}

	raw := map[string]string{FieldPctMin: pctText, FieldVolMin: volumeText, FieldMaxPages: pagesText}
	if err := ValidateParams(params); err != nil {
		var inputErr *InputError
		if errors.As(err, &inputErr) {
			inputErr.Value = raw[inputErr.Field]
		}
		return types.RunParams{}, err
	}
	return params, nil
}

// ValidateParams range checks params built without ParseRequest.
func ValidateParams(params types.RunParams) error {
	err := validate.Struct(params)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &InputError{Field: "request", Message: err.Error()}
	}

	fe := verrs[0]
	field := fieldNames[fe.Field()]
	if field == "" {
		field = fe.Field()
	}
	msg := fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param())
	if field == FieldMaxPages {
		msg = fmt.Sprintf("page ceiling must be between 1 and %d", config.MaxPagesLimit)
	}
	return &InputError{Field: field, Value: fmt.Sprint(fe.Value()), Message: msg}
}
