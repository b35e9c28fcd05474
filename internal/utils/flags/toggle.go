package flags

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/pflag"
)

const (
	toggleTrueCanonicalValue               = "true"
	toggleFalseCanonicalValue              = "false"
	toggleValueTypeConstant                = "bool"
	toggleParseErrorTemplate               = "invalid toggle value %q"
	toggleArgumentTruePlaceholderConstant  = "<YES|no>"
	toggleArgumentFalsePlaceholderConstant = "<yes|NO>"
	toggleUsageEmptyTemplateConstant       = "`%s`"
	toggleUsageFullTemplateConstant        = "`%s` %s"
	longFlagPrefixConstant                 = "--"
	shortFlagPrefixConstant                = "-"
	flagValueSeparatorConstant             = "="
)

var toggleLiterals = map[string]bool{
	toggleTrueCanonicalValue:  true,
	"yes":                     true,
	"on":                      true,
	"1":                       true,
	"t":                       true,
	"y":                       true,
	toggleFalseCanonicalValue: false,
	"no":                      false,
	"off":                     false,
	"0":                       false,
	"f":                       false,
	"n":                       false,
}

type toggleRegistry struct {
	mutex      sync.RWMutex
	names      map[string]struct{}
	shorthands map[string]struct{}
}

var registeredToggles = &toggleRegistry{
	names:      map[string]struct{}{},
	shorthands: map[string]struct{}{},
}

// AddToggleFlag registers a boolean toggle flag that accepts yes/no style values.
func AddToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, shorthand string, defaultValue bool, usage string) {
	if flagSet == nil || len(name) == 0 {
		return
	}

	toggleValue := newToggleFlagValue(defaultValue, target)
	flagSet.VarP(toggleValue, name, shorthand, usage)

	flag := flagSet.Lookup(name)
	if flag == nil {
		return
	}
	flag.NoOptDefVal = toggleTrueCanonicalValue
	flag.Usage = formatToggleUsage(usage, defaultValue)

	registeredToggles.register(name, shorthand)
}

// NormalizeToggleArguments rewrites "--flag value" into "--flag=value" for registered toggles so explicit
// values survive parsing. Only recognized toggle literals are consumed; any other following argument is
// left as a positional argument.
func NormalizeToggleArguments(arguments []string) []string {
	if len(arguments) == 0 {
		return nil
	}

	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		current := arguments[index]
		if current == longFlagPrefixConstant {
			normalized = append(normalized, arguments[index:]...)
			break
		}

		if registeredToggles.matches(current) && index+1 < len(arguments) {
			if _, isLiteral := toggleLiterals[strings.ToLower(arguments[index+1])]; isLiteral {
				normalized = append(normalized, current+flagValueSeparatorConstant+arguments[index+1])
				index++
				continue
			}
		}

		normalized = append(normalized, current)
	}
	return normalized
}

func formatToggleUsage(description string, defaultValue bool) string {
	placeholder := toggleArgumentFalsePlaceholderConstant
	if defaultValue {
		placeholder = toggleArgumentTruePlaceholderConstant
	}
	trimmed := strings.TrimSpace(description)
	if len(trimmed) == 0 {
		return fmt.Sprintf(toggleUsageEmptyTemplateConstant, placeholder)
	}
	return fmt.Sprintf(toggleUsageFullTemplateConstant, placeholder, trimmed)
}

type toggleFlagValue struct {
	currentValue bool
	target       *bool
}

func newToggleFlagValue(defaultValue bool, target *bool) *toggleFlagValue {
	if target != nil {
		*target = defaultValue
	}
	return &toggleFlagValue{currentValue: defaultValue, target: target}
}

func (value *toggleFlagValue) Set(rawValue string) error {
	parsedValue, parseError := parseToggleValue(rawValue)
	if parseError != nil {
		return parseError
	}

	value.currentValue = parsedValue
	if value.target != nil {
		*value.target = parsedValue
	}
	return nil
}

func (value *toggleFlagValue) String() string {
	if value == nil || !value.currentValue {
		return toggleFalseCanonicalValue
	}
	return toggleTrueCanonicalValue
}

func (value *toggleFlagValue) Type() string {
	return toggleValueTypeConstant
}

func parseToggleValue(rawValue string) (bool, error) {
	trimmedValue := strings.ToLower(strings.TrimSpace(rawValue))
	if len(trimmedValue) == 0 {
		return true, nil
	}
	parsedValue, known := toggleLiterals[trimmedValue]
	if !known {
		return false, fmt.Errorf(toggleParseErrorTemplate, rawValue)
	}
	return parsedValue, nil
}

func (registry *toggleRegistry) register(name string, shorthand string) {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()
	registry.names[name] = struct{}{}
	if len(shorthand) > 0 {
		registry.shorthands[shorthand] = struct{}{}
	}
}

// matches reports whether argument is a bare "--name" or "-s" reference to a registered toggle.
func (registry *toggleRegistry) matches(argument string) bool {
	if strings.Contains(argument, flagValueSeparatorConstant) {
		return false
	}

	registry.mutex.RLock()
	defer registry.mutex.RUnlock()

	if strings.HasPrefix(argument, longFlagPrefixConstant) {
		_, exists := registry.names[strings.TrimPrefix(argument, longFlagPrefixConstant)]
		return exists
	}
	if strings.HasPrefix(argument, shortFlagPrefixConstant) {
		_, exists := registry.shorthands[strings.TrimPrefix(argument, shortFlagPrefixConstant)]
		return exists
	}
	return false
}
