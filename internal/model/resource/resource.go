package resource

// Resource describes one learning resource available for suggestion.
type Resource struct {
	ID        string   `json:"id"`
	Subject   string   `json:"subject"`
	UnitTitle string   `json:"unitTitle"`
	Title     string   `json:"title"`
	Keywords  []string `json:"keywords"`
	URL       string   `json:"url"`
}

// Seed provides the default resource catalog used until catalog authoring
// moves to an external system.
func Seed() []Resource {
	return []Resource{
		{
			ID:        "phy-nlm-pulleys",
			Subject:   "Physics",
			UnitTitle: "Laws of Motion",
			Title:     "Pulley Systems and String Tension, Worked Examples",
			Keywords:  []string{"pulley", "tension", "string", "atwood", "free body diagram", "newton"},
			URL:       "https://resources.mentorloop.dev/physics/laws-of-motion/pulleys",
		},
		{
			ID:        "phy-nlm-friction",
			Subject:   "Physics",
			UnitTitle: "Laws of Motion",
			Title:     "Friction on Inclined Planes",
			Keywords:  []string{"friction", "incline", "normal force", "coefficient", "block"},
			URL:       "https://resources.mentorloop.dev/physics/laws-of-motion/friction",
		},
		{
			ID:        "phy-kin-projectile",
			Subject:   "Physics",
			UnitTitle: "Kinematics",
			Title:     "Projectile Motion from Zero",
			Keywords:  []string{"projectile", "trajectory", "range", "velocity", "acceleration"},
			URL:       "https://resources.mentorloop.dev/physics/kinematics/projectiles",
		},
		{
			ID:        "chem-mole-concept",
			Subject:   "Chemistry",
			UnitTitle: "Some Basic Concepts",
			Title:     "The Mole Concept and Molarity",
			Keywords:  []string{"mole", "molarity", "molar mass", "avogadro", "stoichiometry"},
			URL:       "https://resources.mentorloop.dev/chemistry/basics/mole-concept",
		},
		{
			ID:        "chem-atomic-structure",
			Subject:   "Chemistry",
			UnitTitle: "Atomic Structure",
			Title:     "Quantum Numbers and Electron Configuration",
			Keywords:  []string{"orbital", "quantum number", "electron configuration", "shell", "subshell"},
			URL:       "https://resources.mentorloop.dev/chemistry/atomic-structure/quantum-numbers",
		},
		{
			ID:        "math-calc-limits",
			Subject:   "Mathematics",
			UnitTitle: "Calculus",
			Title:     "Limits and Continuity, Intuition First",
			Keywords:  []string{"limit", "continuity", "lhopital", "indeterminate", "epsilon"},
			URL:       "https://resources.mentorloop.dev/math/calculus/limits",
		},
		{
			ID:        "math-calc-derivatives",
			Subject:   "Mathematics",
			UnitTitle: "Calculus",
			Title:     "Differentiation Rules and Chain Rule Practice",
			Keywords:  []string{"derivative", "differentiation", "chain rule", "product rule", "tangent"},
			URL:       "https://resources.mentorloop.dev/math/calculus/derivatives",
		},
		{
			ID:        "math-alg-quadratics",
			Subject:   "Mathematics",
			UnitTitle: "Algebra",
			Title:     "Quadratic Equations and the Discriminant",
			Keywords:  []string{"quadratic", "discriminant", "roots", "factorisation", "parabola"},
			URL:       "https://resources.mentorloop.dev/math/algebra/quadratics",
		},
	}
}
