package main

import (
	"encoding/json"
	"log"
	"os"
	"regexp"
	"strings"

	"gopkg.in/go-playground/validator.v9"
)

// This module adds custom validators used by validator.v9

const (
	// Matches alphanum chars plus underscore, dash and spaces (\t\n\f\r )
	alphaNumSpaceUnderscoreDash = "^[\\w\\-\\s]+$"

	// Matches price display strings: an optional dollar sign, digits with
	// optional thousand separators and cents, and an optional period suffix
	// such as "/month". Eg: "1600", "$1,600.50" or "$1600/month".
	priceFormat = "^\\$?[0-9][0-9,]*(\\.[0-9]+)?( ?/ ?[a-zA-Z]+)?$"
)

var (
	alphaNumSpaceUnderscoreDashRegex = regexp.MustCompile(alphaNumSpaceUnderscoreDash)
	priceFormatRegex                 = regexp.MustCompile(priceFormat)
)

var blacklist []string

// InstallCustomValidators extends validator.v9 with custom validation functions
// and meta tags for fields.
func InstallCustomValidators(validate *validator.Validate) {
	err := validate.RegisterValidation("noforwardslash", notIncludeForwardSlash)
	if err != nil {
		log.Fatalln("Failed to install custom validator:", err)
	}
	err = validate.RegisterValidation("alphanumspace", isAlphanumSpace)
	if err != nil {
		log.Fatalln("Failed to install custom validator:", err)
	}
	loadBlacklist()
	err = validate.RegisterValidation("notinblacklist", notInBlacklist)
	if err != nil {
		log.Fatalln("Failed to install custom validator:", err)
	}
	err = validate.RegisterValidation("priceformat", isPriceFormat)
	if err != nil {
		log.Fatalln("Failed to install custom validator:", err)
	}
}

func loadBlacklist() {
	data, err := os.ReadFile("validators_owners_blacklist.json")
	if err != nil {
		log.Fatal("Couldn't read blacklist file", err)
		return
	}
	err = json.Unmarshal(data, &blacklist)
	if err != nil {
		log.Fatal("Couldn't unmarshal blacklist", err)
		return
	}
}

// notInBlacklist is the validation function for validating if the current
// field's value is not listed in the blacklist of owner names.
// From: https://github.com/marteinn/The-Big-Username-Blacklist
func notInBlacklist(fl validator.FieldLevel) bool {
	return !includeString(fl.Field().String(), blacklist)
}

func includeString(val string, list []string) bool {
	for _, s := range list {
		if s == val {
			return true
		}
	}
	return false
}

// isAlphanumSpace is the validation function for validating if the current
// field's value is a valid alphanumeric value that also accepts dashes,
// underscores and spaces.
func isAlphanumSpace(fl validator.FieldLevel) bool {
	return alphaNumSpaceUnderscoreDashRegex.MatchString(fl.Field().String())
}

// notIncludeForwardSlash is a function that validates the field value does not
// include forward slashes (/).
func notIncludeForwardSlash(fl validator.FieldLevel) bool {
	return !strings.Contains(fl.Field().String(), "/")
}

// isPriceFormat is the validation function for validating if the current
// field's value is a valid price display string. The leading dollar sign is
// optional. Missing ones are added when the listing is stored.
func isPriceFormat(fl validator.FieldLevel) bool {
	return priceFormatRegex.MatchString(strings.TrimSpace(fl.Field().String()))
}
