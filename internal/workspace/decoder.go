package workspace

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/go-viper/mapstructure/v2"
)

const (
	tagsCollectionKeyConstant                = "tags"
	tagCollectionKeyConstant                 = "tag"
	triggersCollectionKeyConstant            = "triggers"
	triggerCollectionKeyConstant             = "trigger"
	variablesCollectionKeyConstant           = "variables"
	variableCollectionKeyConstant            = "variable"
	containerVersionKeyConstant              = "containerVersion"
	metadataKeyConstant                      = "meta"
	parametersKeyConstant                    = "parameters"
	parameterListKeyConstant                 = "parameter"
	configurationKeyConstant                 = "configuration"
	mapstructureTagNameConstant              = "mapstructure"
	tagRecordKindConstant                    = "tag"
	triggerRecordKindConstant                = "trigger"
	variableRecordKindConstant               = "variable"
	collectionShapeErrorTemplateConstant     = "workspace collection %q must be a list"
	recordShapeErrorTemplateConstant         = "%s record %d must be an object"
	recordDecodeErrorTemplateConstant        = "unable to decode %s record %d: %w"
	metadataShapeErrorMessageConstant        = "workspace metadata must be an object"
	metadataDecodeErrorTemplateConstant      = "unable to decode workspace metadata: %w"
	decoderConstructionErrorTemplateConstant = "unable to construct record decoder: %w"
)

// ErrInvalidDocument indicates that a workspace document is not an object.
var ErrInvalidDocument = errors.New("workspace document must be an object")

// Document is a decoded workspace snapshot together with optional embedded metadata.
type Document struct {
	Snapshot         Snapshot
	Metadata         Metadata
	MetadataProvided bool
}

type tagRecord struct {
	ID               string         `mapstructure:"id"`
	TagID            string         `mapstructure:"tagId"`
	Name             string         `mapstructure:"name"`
	Type             string         `mapstructure:"type"`
	Paused           bool           `mapstructure:"paused"`
	FiringTriggerIDs []string       `mapstructure:"firingTriggerIds"`
	FiringTriggerID  []string       `mapstructure:"firingTriggerId"`
	Remaining        map[string]any `mapstructure:",remain"`
}

type triggerRecord struct {
	ID        string         `mapstructure:"id"`
	TriggerID string         `mapstructure:"triggerId"`
	Name      string         `mapstructure:"name"`
	Remaining map[string]any `mapstructure:",remain"`
}

type variableRecord struct {
	ID         string         `mapstructure:"id"`
	VariableID string         `mapstructure:"variableId"`
	Name       string         `mapstructure:"name"`
	Type       string         `mapstructure:"type"`
	Remaining  map[string]any `mapstructure:",remain"`
}

// DecodeSnapshot normalizes a generic decoded document into a Document.
// Missing collections become empty; identifiers accept both generic and platform key names.
func DecodeSnapshot(rawDocument any) (Document, error) {
	if rawDocument == nil {
		return Document{Snapshot: emptySnapshot()}, nil
	}

	document, isObject := normalizeValue(rawDocument).(map[string]any)
	if !isObject {
		return Document{}, ErrInvalidDocument
	}

	collectionSource := document
	if containerVersion, hasContainerVersion := document[containerVersionKeyConstant].(map[string]any); hasContainerVersion && !hasAnyCollection(document) {
		collectionSource = containerVersion
	}

	tags, tagsError := decodeTags(collectionSource)
	if tagsError != nil {
		return Document{}, tagsError
	}

	triggers, triggersError := decodeTriggers(collectionSource)
	if triggersError != nil {
		return Document{}, triggersError
	}

	variables, variablesError := decodeVariables(collectionSource)
	if variablesError != nil {
		return Document{}, variablesError
	}

	decoded := Document{
		Snapshot: Snapshot{
			Tags:      tags,
			Triggers:  triggers,
			Variables: variables,
		},
	}

	rawMetadata, metadataPresent := document[metadataKeyConstant]
	if metadataPresent && rawMetadata != nil {
		metadata, metadataError := decodeMetadata(rawMetadata)
		if metadataError != nil {
			return Document{}, metadataError
		}
		decoded.Metadata = metadata
		decoded.MetadataProvided = true
	}

	return decoded, nil
}

func emptySnapshot() Snapshot {
	return Snapshot{
		Tags:      []Tag{},
		Triggers:  []Trigger{},
		Variables: []Variable{},
	}
}

func hasAnyCollection(document map[string]any) bool {
	for _, key := range []string{
		tagsCollectionKeyConstant,
		tagCollectionKeyConstant,
		triggersCollectionKeyConstant,
		triggerCollectionKeyConstant,
		variablesCollectionKeyConstant,
		variableCollectionKeyConstant,
	} {
		if _, present := document[key]; present {
			return true
		}
	}
	return false
}

func decodeTags(document map[string]any) ([]Tag, error) {
	rawRecords, collectionError := collection(document, tagsCollectionKeyConstant, tagCollectionKeyConstant)
	if collectionError != nil {
		return nil, collectionError
	}

	tags := make([]Tag, 0, len(rawRecords))
	for recordIndex, rawRecord := range rawRecords {
		var record tagRecord
		if decodeError := decodeRecord(tagRecordKindConstant, recordIndex, rawRecord, &record); decodeError != nil {
			return nil, decodeError
		}

		firingTriggerIDs := record.FiringTriggerIDs
		if len(firingTriggerIDs) == 0 {
			firingTriggerIDs = record.FiringTriggerID
		}
		if firingTriggerIDs == nil {
			firingTriggerIDs = []string{}
		}

		parameters, attributes := splitTagFields(record.Remaining)
		tags = append(tags, Tag{
			ID:               firstNonEmpty(record.ID, record.TagID),
			Name:             record.Name,
			Type:             record.Type,
			Paused:           record.Paused,
			FiringTriggerIDs: firingTriggerIDs,
			Parameters:       parameters,
			Attributes:       attributes,
		})
	}
	return tags, nil
}

func decodeTriggers(document map[string]any) ([]Trigger, error) {
	rawRecords, collectionError := collection(document, triggersCollectionKeyConstant, triggerCollectionKeyConstant)
	if collectionError != nil {
		return nil, collectionError
	}

	triggers := make([]Trigger, 0, len(rawRecords))
	for recordIndex, rawRecord := range rawRecords {
		var record triggerRecord
		if decodeError := decodeRecord(triggerRecordKindConstant, recordIndex, rawRecord, &record); decodeError != nil {
			return nil, decodeError
		}
		triggers = append(triggers, Trigger{
			ID:            firstNonEmpty(record.ID, record.TriggerID),
			Name:          record.Name,
			Configuration: flattenNested(record.Remaining, configurationKeyConstant),
		})
	}
	return triggers, nil
}

func decodeVariables(document map[string]any) ([]Variable, error) {
	rawRecords, collectionError := collection(document, variablesCollectionKeyConstant, variableCollectionKeyConstant)
	if collectionError != nil {
		return nil, collectionError
	}

	variables := make([]Variable, 0, len(rawRecords))
	for recordIndex, rawRecord := range rawRecords {
		var record variableRecord
		if decodeError := decodeRecord(variableRecordKindConstant, recordIndex, rawRecord, &record); decodeError != nil {
			return nil, decodeError
		}
		variables = append(variables, Variable{
			ID:         firstNonEmpty(record.ID, record.VariableID),
			Name:       record.Name,
			Type:       record.Type,
			Parameters: flattenParameters(record.Remaining),
		})
	}
	return variables, nil
}

func decodeMetadata(rawMetadata any) (Metadata, error) {
	if _, isObject := rawMetadata.(map[string]any); !isObject {
		return Metadata{}, errors.New(metadataShapeErrorMessageConstant)
	}

	var metadata Metadata
	decoder, decoderError := newWeakDecoder(&metadata)
	if decoderError != nil {
		return Metadata{}, decoderError
	}
	if decodeError := decoder.Decode(rawMetadata); decodeError != nil {
		return Metadata{}, fmt.Errorf(metadataDecodeErrorTemplateConstant, decodeError)
	}
	if metadata.TotalWorkspaces < 0 {
		metadata.TotalWorkspaces = 0
	}
	return metadata, nil
}

func collection(document map[string]any, pluralKey string, singularKey string) ([]any, error) {
	key := pluralKey
	rawCollection, present := document[pluralKey]
	if !present || rawCollection == nil {
		key = singularKey
		rawCollection = document[singularKey]
	}
	if rawCollection == nil {
		return nil, nil
	}

	records, isList := rawCollection.([]any)
	if !isList {
		return nil, fmt.Errorf(collectionShapeErrorTemplateConstant, key)
	}
	return records, nil
}

func decodeRecord(kind string, recordIndex int, rawRecord any, target any) error {
	if _, isObject := rawRecord.(map[string]any); !isObject {
		return fmt.Errorf(recordShapeErrorTemplateConstant, kind, recordIndex)
	}

	decoder, decoderError := newWeakDecoder(target)
	if decoderError != nil {
		return decoderError
	}
	if decodeError := decoder.Decode(rawRecord); decodeError != nil {
		return fmt.Errorf(recordDecodeErrorTemplateConstant, kind, recordIndex, decodeError)
	}
	return nil
}

func newWeakDecoder(target any) (*mapstructure.Decoder, error) {
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          mapstructureTagNameConstant,
		WeaklyTypedInput: true,
		Result:           target,
	})
	if decoderError != nil {
		return nil, fmt.Errorf(decoderConstructionErrorTemplateConstant, decoderError)
	}
	return decoder, nil
}

// splitTagFields separates the platform "parameter" list and an explicit "parameters" object from the
// remaining tag fields.
func splitTagFields(remaining map[string]any) (map[string]any, map[string]any) {
	parameterFields := map[string]any{}
	attributes := map[string]any{}
	for key, value := range remaining {
		switch key {
		case parameterListKeyConstant, parametersKeyConstant:
			parameterFields[key] = value
		default:
			attributes[key] = value
		}
	}
	if len(attributes) == 0 {
		attributes = nil
	}
	return flattenParameters(parameterFields), attributes
}

// flattenParameters keeps every non-identity key and lifts an explicit "parameters" object to the top level.
func flattenParameters(remaining map[string]any) map[string]any {
	return flattenNested(remaining, parametersKeyConstant)
}

func flattenNested(remaining map[string]any, nestedKey string) map[string]any {
	if len(remaining) == 0 {
		return nil
	}

	flattened := make(map[string]any, len(remaining))
	for key, value := range remaining {
		flattened[key] = value
	}

	nested, isObject := flattened[nestedKey].(map[string]any)
	if !isObject {
		return flattened
	}

	delete(flattened, nestedKey)
	for key, value := range nested {
		if _, exists := flattened[key]; exists {
			continue
		}
		flattened[key] = value
	}
	return flattened
}

// normalizeValue converts YAML-style map[any]any values into map[string]any recursively. Non-finite
// floats such as YAML .nan or .inf become their text form so snapshots always encode as JSON.
func normalizeValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		normalized := make(map[string]any, len(typed))
		for key, nestedValue := range typed {
			normalized[key] = normalizeValue(nestedValue)
		}
		return normalized
	case map[any]any:
		normalized := make(map[string]any, len(typed))
		for key, nestedValue := range typed {
			normalized[fmt.Sprint(key)] = normalizeValue(nestedValue)
		}
		return normalized
	case []any:
		normalized := make([]any, len(typed))
		for index, nestedValue := range typed {
			normalized[index] = normalizeValue(nestedValue)
		}
		return normalized
	case float64:
		if math.IsNaN(typed) || math.IsInf(typed, 0) {
			return strconv.FormatFloat(typed, 'g', -1, 64)
		}
		return typed
	default:
		return value
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if len(value) > 0 {
			return value
		}
	}
	return ""
}
