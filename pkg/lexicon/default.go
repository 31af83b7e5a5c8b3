package lexicon

// defaultTopics are domains presumed unrelated to computer science
// categories. Order matters, see Lexicon.
var defaultTopics = []Topic{
	{
		Name: "medicine",
		Keywords: []string{
			"cancer", "tumor", "disease", "patient", "clinical trial", "drug",
			"therapy", "diagnosis", "medical treatment", "surgery", "cardiovascular",
			"cardiac", "hemophilia", "acute kidney injury", "respiratory distress",
		},
	},
	{
		Name: "biology",
		Keywords: []string{
			"gene expression", "protein", "dna sequence", "genome", "cell biology",
			"molecular biology", "genetic", "transcriptome", "biomedical",
		},
	},
	{
		Name: "chemistry",
		Keywords: []string{
			"catalyst", "chemical reaction", "synthesis", "molecule", "electrocatalytic",
			"electrochemical reduction", "co2 reduction", "organic synthesis",
		},
	},
	{
		Name: "climate",
		Keywords: []string{
			"climate change", "global warming", "ecosystem", "biodiversity",
			"carbon emission", "deforestation", "wastewater treatment", "environmental",
		},
	},
	{
		Name: "physics",
		Keywords: []string{
			"gravitational wave", "black hole", "neutron star", "dark matter",
			"quantum mechanics", "particle physics", "cosmology", "coalescence",
		},
	},
	{
		Name: "materials",
		Keywords: []string{
			"nanoparticle", "crystal structure", "alloy", "metal oxide",
			"material science", "polymer",
		},
	},
}

// categoryIndicators are keywords expected in papers that legitimately
// belong to a category.
var categoryIndicators = map[string][]string{
	"cs.DC": {
		"distributed", "parallel", "concurrency", "cloud", "cluster",
		"consensus", "blockchain", "federated learning", "edge computing",
		"serverless", "mapreduce", "hadoop", "spark", "kubernetes",
		"microservices", "peer-to-peer", "replication", "consistency",
	},
	"cs.AI": {
		"artificial intelligence", "machine learning", "deep learning",
		"neural network", "reinforcement learning", "planning", "reasoning",
		"knowledge representation", "expert system",
	},
	"cs.CV": {
		"computer vision", "image", "video", "detection", "segmentation",
		"object recognition", "visual", "convolutional", "3d reconstruction",
	},
	"cs.CL": {
		"natural language", "nlp", "text", "language model", "translation",
		"sentiment analysis", "named entity", "parsing", "tokenization",
	},
	"cs.LG": {
		"machine learning", "supervised learning", "unsupervised learning",
		"classification", "regression", "clustering", "neural network",
		"gradient descent", "optimization",
	},
	"cs.DB": {
		"database", "query", "sql", "transaction", "index", "relational",
		"nosql", "data management", "query optimization",
	},
	"cs.SE": {
		"software engineering", "code", "program", "bug", "testing",
		"debugging", "software development", "version control", "refactoring",
	},
	"cs.RO": {
		"robot", "robotics", "autonomous", "manipulation", "motion planning",
		"slam", "navigation", "control", "actuator",
	},
}

// Default returns the built-in non-target lexicon.
func Default() *Lexicon {
	return Must(defaultTopics)
}

// Indicators returns the positive keywords for a category, or nil when
// the category has none.
func Indicators(category string) []string {
	kws, ok := categoryIndicators[category]
	if !ok {
		return nil
	}
	return append([]string(nil), kws...)
}
