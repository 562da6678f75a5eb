package storage

// Default business rules applied when the user has never saved any.
var (
	DefaultRulesEN = []string{
		"Start with foundational certifications before advanced options.",
		"Align recommendations to the candidate's current or target role.",
		"Avoid overlapping certifications unless the user explicitly asks.",
	}

	DefaultRulesAR = []string{
		"ابدأ بالشهادات التأسيسية قبل الخيارات المتقدمة.",
		"قم بمحاذاة التوصيات مع الدور الحالي أو المستهدف للمرشح.",
		"تجنب الشهادات المتداخلة ما لم يطلب المستخدم ذلك صراحة.",
	}
)

func DefaultRules(language string) []string {
	if language == "ar" {
		return append([]string(nil), DefaultRulesAR...)
	}
	return append([]string(nil), DefaultRulesEN...)
}

// LoadRules returns the persisted rule list, falling back to the defaults
// for the given language when nothing usable is stored.
func (s *Store) LoadRules(language string) []string {
	var rules []string
	if s.Load(UserRulesKey, &rules) && len(rules) > 0 {
		return rules
	}
	return DefaultRules(language)
}

func (s *Store) SaveRules(rules []string) {
	s.Save(UserRulesKey, rules)
}
