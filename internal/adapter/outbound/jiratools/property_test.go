package jiratools

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// For any value, escaping either leaves it untouched or quotes it in a way
// that unescapes back to the original.
func TestProperty_EscapeCSVRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	genValue := gen.OneGenOf(
		gen.AnyString(),
		gen.SliceOf(gen.OneConstOf("a", ",", `"`, "\n", " ", "x")).Map(func(parts []string) string {
			return strings.Join(parts, "")
		}),
	)

	properties.Property("escaped values unescape to the original", prop.ForAll(
		func(value string) bool {
			escaped := escapeCSV(value)
			if !strings.ContainsAny(value, ",\"\n") {
				return escaped == value
			}
			if len(escaped) < 2 || !strings.HasPrefix(escaped, `"`) || !strings.HasSuffix(escaped, `"`) {
				return false
			}
			inner := escaped[1 : len(escaped)-1]
			if strings.Count(inner, `"`)%2 != 0 {
				return false
			}
			return strings.ReplaceAll(inner, `""`, `"`) == value
		},
		genValue,
	))

	properties.TestingRun(t)
}

// Pagination controls reach the query string exactly when they are non-zero.
func TestProperty_PaginationOmitsZero(t *testing.T) {
	properties := gopter.NewProperties(nil)

	genControl := gen.OneGenOf(gen.Const(0), gen.IntRange(0, 1000))

	properties.Property("non-zero controls are attached verbatim", prop.ForAll(
		func(startAt, maxResults int) bool {
			query := url.Values{}
			pagination{StartAt: startAt, MaxResults: maxResults}.apply(query)

			check := func(key string, value int) bool {
				if value == 0 {
					return !query.Has(key)
				}
				return query.Get(key) == strconv.Itoa(value)
			}
			return check("startAt", startAt) && check("maxResults", maxResults)
		},
		genControl, genControl,
	))

	properties.TestingRun(t)
}

// Any label list containing "hotfix" in any letter case is flagged.
func TestProperty_HotfixCaseInsensitive(t *testing.T) {
	properties := gopter.NewProperties(nil)

	genCasing := gen.SliceOfN(6, gen.Bool()).Map(func(upper []bool) string {
		var b strings.Builder
		for i, r := range "hotfix" {
			if upper[i] {
				b.WriteString(strings.ToUpper(string(r)))
			} else {
				b.WriteRune(r)
			}
		}
		return b.String()
	})
	genOther := gen.SliceOf(gen.AlphaString().SuchThat(func(s string) bool {
		return !strings.EqualFold(s, "hotfix")
	}))

	properties.Property("hotfix in any case yields 1", prop.ForAll(
		func(label string, others []string, at int) bool {
			at = at % (len(others) + 1)
			labels := append(append(append([]string{}, others[:at]...), label), others[at:]...)
			return hotfixFlag(labels) == "1"
		},
		genCasing, genOther, gen.IntRange(0, 100),
	))

	properties.Property("no hotfix label yields 0", prop.ForAll(
		func(others []string) bool {
			return hotfixFlag(others) == "0"
		},
		genOther,
	))

	properties.TestingRun(t)
}

// Whole-second estimates always render with two decimals within half a
// hundredth of the exact hour value.
func TestProperty_FormatHours(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("two decimal hours", prop.ForAll(
		func(seconds int) bool {
			value := float64(seconds)
			text := formatHours(&value)

			dot := strings.IndexByte(text, '.')
			if dot < 0 || len(text)-dot-1 != 2 {
				return false
			}
			hours, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return false
			}
			return math.Abs(hours-value/3600) <= 0.005+1e-9
		},
		gen.IntRange(1, 10_000_000),
	))

	properties.TestingRun(t)
}
