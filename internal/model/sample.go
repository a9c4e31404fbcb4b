package model

// SampleRequirements returns the bundled sample corpus
func SampleRequirements() []Requirement {
	return []Requirement{
		{
			ReqID:        "R-001",
			SourceDoc:    "Doc1",
			Section:      "1.0 Einleitung: Source of Truth (SoT)",
			Category:     "Architektur",
			Subcategory:  "System-of-Record",
			Criticality:  CriticalityMust,
			TextOriginal: "Source of Truth (SoT): Die zentrale, relationale Datenbank (Postgres), die alle kanonischen Metadaten, versionierten Dokumente, extrahierten Artefakte und deren Abstammung (Lineage) als maßgebliche Quelle vorhält.",
			CTONote:      "DB ist alleinige maßgebliche Quelle für kanonische Metadaten/Artefakte.",
		},
		{
			ReqID:        "R-002",
			SourceDoc:    "Doc1",
			Section:      "2.0 Architektonische Leitprinzipien: Auditierbarkeit",
			Category:     "Governance",
			Subcategory:  "Auditability",
			Criticality:  CriticalityMust,
			TextOriginal: "Jede Information, jeder extrahierte Claim und jedes generierte Artefakt muss lückenlos auf seinen Ursprung zurückführbar sein. Dies umfasst die genaue Quelle, die Dokumentenversion (sha256).",
			CTONote:      "Lineage-Felder müssen immutable sein.",
		},
		{
			ReqID:        "R-003",
			SourceDoc:    "Doc2",
			Section:      "3.5 API Standards",
			Category:     "Development",
			Subcategory:  "API Design",
			Criticality:  CriticalityShould,
			TextOriginal: "Alle externen Schnittstellen sollten dem RESTful Standard entsprechen und mittels OpenAPI 3.0 spezifiziert werden.",
			CTONote:      "gRPC für interne Kommunikation zulässig.",
		},
		{
			ReqID:        "R-004",
			SourceDoc:    "Doc1",
			Section:      "4.1 Sicherheit",
			Category:     "Security",
			Subcategory:  "Encryption",
			Criticality:  CriticalityMust,
			TextOriginal: "Daten im Ruhezustand (Data at Rest) müssen mit AES-256 verschlüsselt werden.",
			CTONote:      "KMS Key Rotation jährlich.",
		},
		{
			ReqID:        "R-005",
			SourceDoc:    "Doc3",
			Section:      "2.2 Performance",
			Category:     "Architektur",
			Subcategory:  "Latency",
			Criticality:  CriticalityShould,
			TextOriginal: "Die Antwortzeit der API Endpunkte sollte im 99. Perzentil unter 200ms liegen.",
			CTONote:      "Gilt nicht für Batch-Processing.",
		},
	}
}
