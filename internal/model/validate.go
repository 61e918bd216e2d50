package model

// Static type-validity predicates. The string-level checks return a plain
// bool; the value-level checks take `any`, require the exact Go type
// (float64, int64, string, TimeStamp) and fail on nil.

// IsGraphicalChar reports whether c is a printable, non-space ASCII character.
func IsGraphicalChar(c byte) bool {
	return c > 0x20 && c < 0x7F
}

// isReservedChar reports whether c is one of the characters reserved by the
// canonical string syntax: ( ) < > , "
func isReservedChar(c byte) bool {
	switch c {
	case '(', ')', '<', '>', ',', '"':
		return true
	}
	return false
}

// IsValidFargName reports whether name is a legal formal-argument name:
// "<" interior ">", where the interior is one or more graphical characters
// other than the reserved ones.
func IsValidFargName(name string) bool {
	if len(name) < 3 || name[0] != '<' || name[len(name)-1] != '>' {
		return false
	}
	for i := 1; i < len(name)-1; i++ {
		c := name[i]
		if !IsGraphicalChar(c) || isReservedChar(c) {
			return false
		}
	}
	return true
}

// validNominal checks nominal syntax: non-empty, no leading or trailing
// blank, spaces and unreserved graphical characters only.
func validNominal(s string) bool {
	if len(s) == 0 || s[0] == ' ' || s[len(s)-1] == ' ' {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' {
			continue
		}
		if !IsGraphicalChar(c) || isReservedChar(c) {
			return false
		}
	}
	return true
}

// IsValidPredName reports whether name is a legal predicate name. Same as
// nominal syntax without internal spaces.
func IsValidPredName(name string) bool {
	if len(name) == 0 {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if !IsGraphicalChar(c) || isReservedChar(c) {
			return false
		}
	}
	return true
}

// IsValidSVarName reports whether name is a legal matrix (spreadsheet
// variable) name. Internal spaces are allowed.
func IsValidSVarName(name string) bool {
	return validNominal(name)
}

// IsValidQueryVarName reports whether name is a legal query variable: a
// "?" followed by a valid predicate name.
func IsValidQueryVarName(name string) bool {
	return len(name) > 1 && name[0] == '?' && IsValidPredName(name[1:])
}

func validTextString(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7F {
			return false
		}
	}
	return true
}

func validQuoteString(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x20 || c > 0x7E || c == '"' {
			return false
		}
	}
	return true
}

// IsValidFloat reports whether v is a float64. Narrower types are rejected.
func IsValidFloat(v any) (bool, error) {
	if v == nil {
		return false, newError(ErrCodeNilArgument, "IsValidFloat", "value is nil")
	}
	_, ok := v.(float64)
	return ok, nil
}

// IsValidInt reports whether v is an int64. Narrower types are rejected.
func IsValidInt(v any) (bool, error) {
	if v == nil {
		return false, newError(ErrCodeNilArgument, "IsValidInt", "value is nil")
	}
	_, ok := v.(int64)
	return ok, nil
}

// IsValidNominal reports whether v is a string with nominal syntax.
func IsValidNominal(v any) (bool, error) {
	if v == nil {
		return false, newError(ErrCodeNilArgument, "IsValidNominal", "value is nil")
	}
	s, ok := v.(string)
	return ok && validNominal(s), nil
}

// IsValidTextString reports whether v is a string of characters in
// 0x20–0x7F. The empty string is valid.
func IsValidTextString(v any) (bool, error) {
	if v == nil {
		return false, newError(ErrCodeNilArgument, "IsValidTextString", "value is nil")
	}
	s, ok := v.(string)
	return ok && validTextString(s), nil
}

// IsValidQuoteString reports whether v is a string of characters in
// 0x20–0x7E, excluding the double quote.
func IsValidQuoteString(v any) (bool, error) {
	if v == nil {
		return false, newError(ErrCodeNilArgument, "IsValidQuoteString", "value is nil")
	}
	s, ok := v.(string)
	return ok && validQuoteString(s), nil
}

// IsValidTimeStamp reports whether v is a TimeStamp within legal bounds.
func IsValidTimeStamp(v any) (bool, error) {
	if v == nil {
		return false, newError(ErrCodeNilArgument, "IsValidTimeStamp", "value is nil")
	}
	ts, ok := v.(TimeStamp)
	return ok && ts.Validate() == nil, nil
}
