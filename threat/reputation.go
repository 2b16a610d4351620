package threat

// MaliciousThreshold is the score at or above which an indicator is malicious
const MaliciousThreshold = 0.7

// Verdict is the outcome of aggregating provider results
type Verdict struct {
	Score       float64
	Category    string
	IsMalicious bool
}

// CalculateReputation averages the scores of every contributing source.
//
//	VirusTotal: malicious / max(total, 1), skipped when not found
//	AbuseIPDB:  abuseConfidenceScore / 100
//	GreyNoise:  malicious -> 1, benign -> 0, anything else or not found is skipped
//
// With no contributing source the score is 0.
func CalculateReputation(sources []SourceResult) Verdict {
	var total float64
	var count int

	for _, src := range sources {
		switch d := src.Data.(type) {
		case *VirusTotalData:
			if d.NotFound {
				continue
			}
			total += float64(d.Malicious) / float64(max(d.Total, 1))
			count++
		case *AbuseIPDBData:
			total += float64(d.AbuseConfidenceScore) / 100
			count++
		case *GreyNoiseData:
			if d.NotFound {
				continue
			}
			switch d.Classification {
			case "malicious":
				total++
				count++
			case "benign":
				count++
			}
		}
	}

	var score float64
	if count > 0 {
		score = total / float64(count)
	}
	return Verdict{
		Score:       score,
		Category:    categorize(score),
		IsMalicious: score >= MaliciousThreshold,
	}
}

func categorize(score float64) string {
	switch {
	case score >= MaliciousThreshold:
		return CategoryMalicious
	case score >= 0.4:
		return CategorySuspicious
	case score >= 0.1:
		return CategoryPotentiallyMalicious
	default:
		return CategoryClean
	}
}
