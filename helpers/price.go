package helpers

import (
	"regexp"
	"strconv"
	"strings"
)

// priceTokenRegex matches a grouped-thousands number with an optional 원 suffix.
var priceTokenRegex = regexp.MustCompile(`\d{1,3}(?:,\d{3})*(?:원)?`)

// ExtractFinalPrice pulls the estimated settlement price out of a deal title.
// Titles conventionally end with the final price, so the last matching token
// wins; a crossed-out original price earlier in the title must not be picked.
// Returns 0 when the title carries no price token.
func ExtractFinalPrice(title string) int {
	matches := priceTokenRegex.FindAllString(title, -1)
	if len(matches) == 0 {
		return 0
	}

	last := matches[len(matches)-1]
	last = strings.ReplaceAll(last, ",", "")
	last = strings.TrimSuffix(last, "원")

	price, err := strconv.Atoi(last)
	if err != nil {
		return 0
	}
	return price
}
