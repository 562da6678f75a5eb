package types

import "encoding/json"

// =============== chat TYPES ===============

// ChatMessage is one turn of the conversation kept for model context.
type ChatMessage struct {
	Text   string `json:"text"`
	IsUser bool   `json:"isUser"`
}

// =============== CV TYPES ===============

// RawCv is an uploaded CV within a session. Name is the unique key.
type RawCv struct {
	Name       string        `json:"name"`
	Text       string        `json:"text"`
	IsParsing  bool          `json:"isParsing"`
	Selected   bool          `json:"selected"`
	Structured *StructuredCv `json:"structured,omitempty"`
}

type ExperienceEntry struct {
	JobTitle    string `json:"jobTitle"`
	Company     string `json:"company"`
	Description string `json:"description"`
	Period      string `json:"period"`
}

type EducationEntry struct {
	Degree      string `json:"degree"`
	Major       string `json:"major"`
	Institution string `json:"institution"`
}

type CertEntry struct {
	Title  string `json:"title"`
	Issuer string `json:"issuer"`
}

// SkillEntry accepts both `"Go"` and `{"title":"Go"}` on the wire; models
// emit either form depending on the run.
type SkillEntry struct {
	Title string `json:"title"`
}

func (s *SkillEntry) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &s.Title)
	}
	var obj struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	s.Title = obj.Title
	return nil
}

type OtherSections struct {
	Achievements []string `json:"achievements"`
	Languages    []string `json:"languages"`
	Summary      string   `json:"summary"`
	Interests    string   `json:"interests"`
}

// StructuredCv is the fixed multi-section schema produced from one RawCv.
// Every array field is always present, never null.
type StructuredCv struct {
	Experience     []ExperienceEntry `json:"experience"`
	Education      []EducationEntry  `json:"education"`
	Certifications []CertEntry       `json:"certifications"`
	Skills         []SkillEntry      `json:"skills"`
	Other          OtherSections     `json:"other"`
}

// Normalize coerces every missing or null section to its empty value so the
// wire shape always carries arrays.
func (c *StructuredCv) Normalize() {
	if c.Experience == nil {
		c.Experience = []ExperienceEntry{}
	}
	if c.Education == nil {
		c.Education = []EducationEntry{}
	}
	if c.Certifications == nil {
		c.Certifications = []CertEntry{}
	}
	if c.Skills == nil {
		c.Skills = []SkillEntry{}
	}
	if c.Other.Achievements == nil {
		c.Other.Achievements = []string{}
	}
	if c.Other.Languages == nil {
		c.Other.Languages = []string{}
	}
}

// =============== catalog TYPES ===============

// CertificateCatalogEntry is the canonical catalog schema produced once at
// load time. Downstream lookups use only these field names.
type CertificateCatalogEntry struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	NameAr         string  `json:"nameAr"`
	Entity         string  `json:"entity"`
	FieldEn        string  `json:"fieldEn"`
	FieldAr        string  `json:"fieldAr"`
	Description    string  `json:"description"`
	Level          string  `json:"level"`
	EstimatedHours float64 `json:"estimatedHours"`
}

// =============== recommendation TYPES ===============

type RecommendationItem struct {
	CertID       string   `json:"certId,omitempty"`
	CertName     string   `json:"certName"`
	Reason       string   `json:"reason"`
	RulesApplied []string `json:"rulesApplied"`
}

// CandidateRecord holds the latest recommendation result for one CV. CvName
// is the key back to RawCv.Name. Error is set when analysis produced nothing
// usable; such records still appear in the aggregate.
type CandidateRecord struct {
	CandidateName   string               `json:"candidateName"`
	CvName          string               `json:"cvName"`
	Recommendations []RecommendationItem `json:"recommendations"`
	Error           string               `json:"error,omitempty"`
}

// RecommendationAggregate is the ordered collection of all current per-CV
// records. Field names are the wire contract between the pipeline, the
// renderer and the persistence layer.
type RecommendationAggregate struct {
	Candidates []CandidateRecord `json:"candidates"`
}
