package profile

// Override is a sparse [profile.<kind>] section. Nil fields inherit the
// baseline value.
type Override struct {
	OptLevel     *int
	CodegenUnits *int
	Debug        *bool
	Rpath        *bool
}

// IsZero reports whether the override changes nothing.
func (o Override) IsZero() bool {
	return o.OptLevel == nil && o.CodegenUnits == nil && o.Debug == nil && o.Rpath == nil
}

// Overrides holds the optional override for each profile kind.
type Overrides struct {
	Dev     *Override
	Release *Override
	Test    *Override
	Doc     *Override
	Bench   *Override
}

// For returns the override declared for env, or nil.
func (o Overrides) For(env Env) *Override {
	switch env {
	case EnvDev:
		return o.Dev
	case EnvRelease:
		return o.Release
	case EnvTest:
		return o.Test
	case EnvDoc:
		return o.Doc
	case EnvBench:
		return o.Bench
	}
	return nil
}

// Merge returns base with every field set in o applied. base is a value, so
// the baseline is never modified; a nil override returns base unchanged.
func Merge(base Profile, o *Override) Profile {
	if o == nil {
		return base
	}
	if o.OptLevel != nil {
		base.OptLevel = *o.OptLevel
	}
	if o.CodegenUnits != nil {
		base.CodegenUnits = *o.CodegenUnits
	}
	if o.Debug != nil {
		base.Debug = *o.Debug
	}
	if o.Rpath != nil {
		base.Rpath = *o.Rpath
	}
	return base
}

// Resolve merges the override declared for base's own kind onto base.
func (o Overrides) Resolve(base Profile) Profile {
	return Merge(base, o.For(base.Env))
}
