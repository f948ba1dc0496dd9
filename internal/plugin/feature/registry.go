package feature

// Add returns features with f appended, or features unchanged when a
// feature with an equal code already exists. The input slice is never
// modified.
func Add(features []Feature, f Feature) []Feature {
	for _, existing := range features {
		if existing.Code.Equal(f.Code) {
			return features
		}
	}
	out := make([]Feature, 0, len(features)+1)
	out = append(out, features...)
	return append(out, f)
}

// Remove returns features without any entry matching selector. A
// structured selector removes every structured code of the same type,
// whatever its other fields; one without a type removes nothing. A plain
// selector removes exact matches.
func Remove(features []Feature, selector Code) []Feature {
	out := make([]Feature, 0, len(features))
	if selector.structured && selector.Type == "" {
		return append(out, features...)
	}
	for _, f := range features {
		if f.Code.Equal(selector) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Find returns the feature whose code equals c.
func Find(features []Feature, c Code) (Feature, bool) {
	for _, f := range features {
		if f.Code.Equal(c) {
			return f, true
		}
	}
	return Feature{}, false
}

// Clone returns a copy of features safe to mutate independently.
func Clone(features []Feature) []Feature {
	if features == nil {
		return nil
	}
	out := make([]Feature, len(features))
	for i, f := range features {
		f.Cmds = append([]Cmd(nil), f.Cmds...)
		out[i] = f
	}
	return out
}
