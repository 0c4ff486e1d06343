package domain

type SkillCategory struct {
	Name   string   `json:"name"`
	Skills []string `json:"skills"`
}

var TechSkills = []SkillCategory{
	{Name: "Programming Languages", Skills: []string{
		"C", "C#", "C++", "Dart", "Go", "Java", "JavaScript", "Kotlin", "PHP",
		"Python", "R", "Ruby", "Rust", "Scala", "SQL", "Swift", "TypeScript",
	}},
	{Name: "Frontend", Skills: []string{
		"Angular", "CSS", "HTML", "Next.js", "React", "Redux", "Svelte",
		"Tailwind CSS", "Vue.js",
	}},
	{Name: "Backend", Skills: []string{
		"Django", "Express.js", "FastAPI", "Flask", "GraphQL", "gRPC", "Laravel",
		"NestJS", "Node.js", "REST APIs", "Ruby on Rails", "Spring Boot",
	}},
	{Name: "Mobile", Skills: []string{
		"Android", "Flutter", "iOS", "React Native", "SwiftUI",
	}},
	{Name: "Databases", Skills: []string{
		"Cassandra", "DynamoDB", "Elasticsearch", "MongoDB", "MySQL",
		"PostgreSQL", "Redis", "SQLite",
	}},
	{Name: "Cloud & DevOps", Skills: []string{
		"AWS", "Azure", "CI/CD", "Docker", "GitHub Actions", "Google Cloud",
		"Jenkins", "Kubernetes", "Linux", "Terraform",
	}},
	{Name: "Data & AI", Skills: []string{
		"Apache Spark", "Computer Vision", "Data Analysis", "Deep Learning",
		"Machine Learning", "NLP", "Pandas", "Power BI", "PyTorch", "Tableau",
		"TensorFlow",
	}},
	{Name: "Testing", Skills: []string{
		"Cypress", "Jest", "JUnit", "Playwright", "Selenium", "Unit Testing",
	}},
	{Name: "Design", Skills: []string{
		"Adobe XD", "Figma", "UI Design", "UX Research",
	}},
}

var SoftSkills = []SkillCategory{
	{Name: "Soft Skills", Skills: []string{
		"Adaptability", "Collaboration", "Communication", "Critical Thinking",
		"Leadership", "Mentoring", "Problem Solving", "Project Management",
		"Stakeholder Management", "Time Management",
	}},
	{Name: "Languages", Skills: []string{
		"English", "French", "German", "Hindi", "Japanese", "Spanish", "Tamil",
		"Telugu",
	}},
}

// SkillTaxonomy is the full skill vocabulary, technical categories first.
func SkillTaxonomy() []SkillCategory {
	all := make([]SkillCategory, 0, len(TechSkills)+len(SoftSkills))
	all = append(all, TechSkills...)
	return append(all, SoftSkills...)
}

// AllSkills flattens the taxonomy, dropping duplicates.
func AllSkills() []string {
	seen := map[string]bool{}
	var skills []string
	for _, category := range SkillTaxonomy() {
		for _, s := range category.Skills {
			if !seen[s] {
				seen[s] = true
				skills = append(skills, s)
			}
		}
	}
	return skills
}
