package tamper

import (
	"fmt"
	"strings"
)

// Catalog is an ordered list of tampers.
type Catalog []Tamper

// catalog is the fixed catalog in declaration order. The first entry is the
// identity so the untransformed payload leads every generated set.
var catalog = Catalog{
	pure("original", CategoryIdentity, func(s string) string { return s }),
	pure("url_encoded", CategoryEncoding, urlEncode),
	random("mixed_case_spaces", CategoryCase, mixedCaseSpaces),
	replacer("comment_before_parentheses", CategoryCommentInjection, "(", "/**/("),
	replacer("plus2concat", CategoryCommentInjection, "+", "||"),
	replacer("plus2fnconcat", CategoryCommentInjection, "+", "fn+"),
	pure("random_comments", CategoryCommentInjection, randomComments),
	pure("char_double_encode", CategoryEncoding, charDoubleEncode),
	fallible("charencode", CategoryEncoding, charEncode),
	fallible("charunicodeencode", CategoryEncoding, charUnicodeEncode),
	pure("charunicodeescape", CategoryEncoding, charUnicodeEscape),
	replacer("apostrophe_mask", CategoryCommentInjection, "'", `"`),
	pure("apostrophenullencode", CategoryEncoding, apostropheNullEncode),
	pure("append_nullbyte", CategoryEncoding, appendNullByte),
	pure("base64_encode", CategoryEncoding, base64Encode),
	pure("lowercase", CategoryCase, lowercase),
	pure("uppercase", CategoryCase, uppercase),
	random("random_case", CategoryCase, randomCase),
	space2("space2comment", blankComment),
	space2("space2dash", blankDash),
	space2("space2hash", blankHash),
	space2("space2morecomment", blankMoreComment),
	space2("space2morehash", blankMoreHash),
	space2("space2mssqlblank", blankNone),
	space2("space2mssqlhash", blankHash),
	space2("space2mysqlblank", blankNone),
	space2("space2mysqldash", blankDash),
	space2("space2plus", blankPlus),
	random("space2randomblank", CategoryWhitespace, space2RandomBlank),
	replacer("sleep2getlock", CategoryKeywordRewrite, "WAITFOR DELAY", "WAITFOR GET_LOCK"),
	replacer("unionalltounion", CategoryKeywordRewrite, "UNION ALL", "UNION"),
	replacer("unmagicquotes", CategoryCommentInjection, `\'`, "'"),
	replacer("d_union", CategoryKeywordRewrite, "UNION", "DUNION"),
}

// Default returns a copy of the full catalog in declaration order.
func Default() Catalog {
	out := make(Catalog, len(catalog))
	copy(out, catalog)
	return out
}

// Names returns the tamper names in catalog order.
func (c Catalog) Names() []string {
	names := make([]string, len(c))
	for i, t := range c {
		names[i] = t.Name()
	}
	return names
}

// Select returns the entries of c whose names appear in names, keeping the
// catalog order of c. Unknown names are reported together in one error.
func (c Catalog) Select(names ...string) (Catalog, error) {
	if len(names) == 0 {
		return c, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" {
			want[n] = true
		}
	}
	var out Catalog
	for _, t := range c {
		key := strings.ToLower(t.Name())
		if want[key] {
			out = append(out, t)
			delete(want, key)
		}
	}
	if len(want) > 0 {
		unknown := make([]string, 0, len(want))
		for _, n := range names {
			key := strings.ToLower(strings.TrimSpace(n))
			if want[key] {
				unknown = append(unknown, n)
				delete(want, key)
			}
		}
		return nil, fmt.Errorf("tamper: unknown tamper(s): %s", strings.Join(unknown, ", "))
	}
	return out, nil
}
