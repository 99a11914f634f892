package ranking

import "github.com/hanapwede/job-recommender/internal/types"

func accountingJob() types.JobPosting {
	return types.JobPosting{
		PostID:         1,
		Title:          "Accounting Clerk",
		Description:    "Accounting clerk needed",
		SkillsRequired: "excel, bookkeeping",
		Category:       "Finance",
		Tags:           []string{"finance"},
		DisabilityTags: []string{"Visual Impairment"},
		EmployerID:     10,
		CompanyName:    "Ledger Co",
	}
}

func warehouseJob() types.JobPosting {
	return types.JobPosting{
		PostID:         2,
		Title:          "Warehouse Packer",
		Description:    "Warehouse packer",
		SkillsRequired: "lifting, stamina",
		Category:       "Logistics",
		Tags:           []string{"logistics"},
		DisabilityTags: []string{"Mobility"},
		EmployerID:     11,
		CompanyName:    "Boxes Inc",
	}
}

func sampleCorpus() []types.JobPosting {
	return []types.JobPosting{accountingJob(), warehouseJob()}
}

func visualCandidate() *types.CandidateProfile {
	return &types.CandidateProfile{
		UserID:         19,
		Preferences:    []string{"finance"},
		DisabilityType: "Visual Impairment",
		Skills:         "excel, accounting",
	}
}
