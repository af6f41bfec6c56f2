package fallback

import (
	"cyberintel/internal/processor"
)

// curated 是各分类的静态兜底内容：当所有在线源都拿不到数据时顶上，
// 链接指向长期有效的官方入口页。时间戳固定，避免每轮刷新都被当成新条目
var curated = map[string][]processor.Item{
	"Ransomware": {
		{
			Title:     "CISA StopRansomware resources",
			Link:      "https://www.cisa.gov/stopransomware",
			Summary:   "Official advisories, guides and alerts on active ransomware campaigns.",
			Source:    "CISA",
			Published: "2024-01-01T00:00:00Z",
		},
		{
			Title:     "No More Ransom decryption tools",
			Link:      "https://www.nomoreransom.org/",
			Summary:   "Free decryptors and prevention advice from Europol and partners.",
			Source:    "No More Ransom",
			Published: "2024-01-01T00:00:00Z",
		},
	},
	"Vulnerabilities": {
		{
			Title:     "CISA Known Exploited Vulnerabilities Catalog",
			Link:      "https://www.cisa.gov/known-exploited-vulnerabilities-catalog",
			Summary:   "Authoritative list of CVEs observed under active exploitation.",
			Source:    "CISA",
			Published: "2024-01-01T00:00:00Z",
		},
		{
			Title:     "NVD recent CVE listings",
			Link:      "https://nvd.nist.gov/vuln/full-listing",
			Summary:   "National Vulnerability Database feed of newly published CVEs.",
			Source:    "NVD",
			Published: "2024-01-01T00:00:00Z",
		},
	},
	"Data Breaches": {
		{
			Title:     "Have I Been Pwned: latest breaches",
			Link:      "https://haveibeenpwned.com/PwnedWebsites",
			Summary:   "Catalogue of recently loaded breach corpora and affected services.",
			Source:    "HIBP",
			Published: "2024-01-01T00:00:00Z",
		},
	},
	"APT": {
		{
			Title:     "MITRE ATT&CK group profiles",
			Link:      "https://attack.mitre.org/groups/",
			Summary:   "Tracked intrusion sets with techniques and reporting references.",
			Source:    "MITRE",
			Published: "2024-01-01T00:00:00Z",
		},
	},
	"Phishing": {
		{
			Title:     "APWG phishing activity trends reports",
			Link:      "https://apwg.org/trendsreports/",
			Summary:   "Quarterly statistics on phishing volume and targeted sectors.",
			Source:    "APWG",
			Published: "2024-01-01T00:00:00Z",
		},
	},
	"Cloud/SaaS": {
		{
			Title:     "Cloud Security Alliance research",
			Link:      "https://cloudsecurityalliance.org/research",
			Summary:   "Guidance and threat research for cloud and SaaS environments.",
			Source:    "CSA",
			Published: "2024-01-01T00:00:00Z",
		},
	},
	"Malware/Tools": {
		{
			Title:     "abuse.ch MalwareBazaar",
			Link:      "https://bazaar.abuse.ch/browse/",
			Summary:   "Recently submitted malware samples with family tagging.",
			Source:    "abuse.ch",
			Published: "2024-01-01T00:00:00Z",
		},
	},
}

// Items 返回某分类的兜底内容副本；未知分类返回 nil
func Items(category string) []processor.Item {
	src, ok := curated[category]
	if !ok {
		return nil
	}
	out := make([]processor.Item, len(src))
	copy(out, src)
	return out
}
