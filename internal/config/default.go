package config

// Default returns the built-in configuration used by the CLI demo and by
// tests that do not supply their own config file: the four identity
// categories, the four-specialist capability table plus the fallback node,
// the quality rubric lexicons/weights, and the completion checker's keyword
// lists, all as named in the lexicon this orchestrator is grounded on.
func Default() *Config {
	return &Config{
		IdentityCategories: map[string]IdentityCategory{
			"veteran": {
				Keywords:  []string{"veteran", "military", "army", "navy", "air force", "marine", "deployed", "deployment", "service member", "gi bill"},
				Context:   []string{"served", "discharge", "active duty", "combat", "base", "enlisted"},
				Barriers:  []string{"civilian_translation_gap", "benefits_navigation", "transition_anxiety"},
				Strengths: []string{"leadership", "discipline", "team_coordination", "security_clearance"},
			},
			"international": {
				Keywords:  []string{"visa", "international", "credential", "immigrant", "h-1b", "green card", "foreign degree", "work permit"},
				Context:   []string{"came to the country", "back home", "my country", "overseas", "relocated"},
				Barriers:  []string{"credential_recognition", "visa_restrictions", "language_barrier"},
				Strengths: []string{"multilingual", "global_experience", "adaptability"},
			},
			"environmental_justice": {
				Keywords:  []string{"environmental justice", "pollution", "community organizing", "frontline community", "toxic", "superfund", "clean energy"},
				Context:   []string{"my neighborhood", "our community", "near the plant", "air quality"},
				Barriers:  []string{"underfunded_programs", "limited_access", "historic_disinvestment"},
				Strengths: []string{"community_trust", "organizing_experience", "local_knowledge"},
			},
			"career_development": {
				Keywords:  []string{"resume", "career change", "job search", "interview", "promotion", "upskilling", "networking"},
				Context:   []string{"looking for work", "between jobs", "want to switch", "next step in my career"},
				Barriers:  []string{"skills_gap", "unclear_direction", "limited_network"},
				Strengths: []string{"transferable_skills", "motivation", "prior_experience"},
			},
		},
		IdentityOrder: []string{"veteran", "international", "environmental_justice", "career_development"},
		IntersectionalityMarkers: []IntersectionalityMarker{
			{Name: "single_parent", Keywords: []string{"single mother", "single parent", "single dad", "single father"}},
			{Name: "racial_ethnic_minority", Keywords: []string{"black", "latino", "latina", "hispanic", "asian american", "indigenous", "native american", "person of color"}},
			{Name: "disability_status", Keywords: []string{"disability", "disabled", "ptsd", "anxiety"}},
		},
		IdentityFallback: "career_development",

		Specialists: map[string]SpecialistProfile{
			"marcus": {
				PrimaryFocus:     []string{"veteran", "military_transition", "veteran_benefits"},
				SecondaryFocus:   []string{"career_development"},
				RecommendedTools: []string{"benefits_lookup", "resume_translation"},
				SuccessMetrics:   []string{"benefits_claim_filed", "civilian_resume_drafted"},
				ExpectedOutcome:  "a clear path through veteran benefits and civilian job translation",
				SystemPromptTmpl: "You are Marcus, a specialist in veteran transitions. Speak plainly, acknowledge military service, and translate military experience into civilian terms.",
			},
			"liv": {
				PrimaryFocus:     []string{"international", "credential_evaluation", "visa_support"},
				SecondaryFocus:   []string{"career_development"},
				RecommendedTools: []string{"credential_evaluation_lookup", "visa_status_check"},
				SuccessMetrics:   []string{"credential_evaluated", "visa_pathway_identified"},
				ExpectedOutcome:  "a plan for credential recognition and visa-compliant employment",
				SystemPromptTmpl: "You are Liv, a specialist in international credentials. Be precise about visa constraints and credential evaluation steps.",
			},
			"miguel": {
				PrimaryFocus:     []string{"environmental_justice", "community_organizing", "equity_advocacy"},
				SecondaryFocus:   []string{"career_development"},
				RecommendedTools: []string{"ej_resource_directory", "community_program_lookup"},
				SuccessMetrics:   []string{"local_program_identified", "community_connection_made"},
				ExpectedOutcome:  "a connection to local environmental-justice resources and community programs",
				EJBonus:          true,
				SystemPromptTmpl: "You are Miguel, a specialist in environmental justice and community organizing. Center the person's community context and name concrete local resources.",
			},
			"jasmine": {
				PrimaryFocus:     []string{"career_development", "skills_analysis", "resume_optimization"},
				SecondaryFocus:   []string{"veteran", "international", "environmental_justice"},
				RecommendedTools: []string{"resume_review", "skills_gap_analysis"},
				SuccessMetrics:   []string{"resume_improved", "next_step_identified"},
				ExpectedOutcome:  "a concrete next step in the person's career development",
				GeneralistBonus:  true,
				SystemPromptTmpl: "You are Jasmine, a career development specialist handling the general case. Give concrete, actionable next steps tailored to the person's background.",
			},
		},
		SpecialistOrder: []string{"marcus", "liv", "miguel", "jasmine"},
		FallbackNode:    "fallback",

		QualityWeights: QualityWeights{
			Clarity:         0.25,
			Actionability:   0.25,
			Personalization: 0.20,
			SourceCitation:  0.20,
			EjAwareness:     0.10,
		},
		QualityLexicons: map[string]QualityLexicon{
			"clarity":          {Keywords: []string{"step", "first", "next", "then", "specific", "clear", "exactly"}, PerHit: 2},
			"actionability":    {Keywords: []string{"contact", "apply", "enroll", "visit", "call", "email", "website", "next step"}, PerHit: 1.5},
			"personalization":  {Keywords: []string{"your", "you", "based on", "given", "specific to", "tailored"}, PerHit: 1.5},
			"source_citation":  {Keywords: []string{"organization:", "contact:", "website:", "verified:", "source:", "phone:"}, PerHit: 2},
			"ej_awareness":     {Keywords: []string{"environmental justice", "community", "equity", "frontline", "overburdened", "systemic", "barriers", "intersectional"}, PerHit: 1.5},
		},

		Completion: CompletionLexicon{
			GratitudeClosure: []string{
				"thank you", "thanks", "that's helpful", "that helps", "perfect", "great",
				"sounds good", "i'll look into", "i'll contact", "i'll apply", "that's all",
				"no more questions", "goodbye", "bye", "talk later",
			},
			NaturalEnding: []string{"that's all i needed", "no other questions", "i'm all set"},
			ContactInformation: []string{"contact", "email", "phone", "apply", "website"},
		},

		EscalationContact: "human-review@example.org",
	}
}
