package knowledge

// defaultEntries is the built-in guidance table. Order matters: the
// substring pass returns the first keyword found.
var defaultEntries = []Entry{
	// Biosafety
	{Keyword: "gmo", Response: "GMOs (Genetically Modified Organisms) require special clearance from the GEAC (Genetic Engineering Approval Committee) in India. You need to obtain permission before any research, testing, or release."},
	{Keyword: "biosafety committee", Response: "An Institutional Biosafety Committee (IBSC) is mandatory for institutions handling genetically engineered organisms. They oversee compliance with guidelines and report to RCGM."},
	{Keyword: "geac", Response: "The Genetic Engineering Approval Committee (GEAC) is India's apex body for approval of activities involving large-scale use of hazardous microorganisms and recombinants in research and industrial production."},
	{Keyword: "rcgm", Response: "The Review Committee on Genetic Manipulation (RCGM) under DBT reviews all ongoing research projects involving high-risk category and controlled field experiments."},
	{Keyword: "containment level", Response: "Biosafety containment levels range from BSL-1 (minimal risk) to BSL-4 (dangerous pathogens). Each level requires specific safety equipment, practices, and facility design."},
	{Keyword: "biosafety guidelines", Response: "The Government of India has published comprehensive biosafety guidelines through DBT. These cover rDNA research, large-scale operations, and environmental release of GMOs."},

	// Ethics
	{Keyword: "informed consent", Response: "Informed consent requires fully disclosing research procedures, risks, benefits, and alternatives to participants. Documentation must be maintained and approved by an ethics committee."},
	{Keyword: "animal ethics", Response: "Animal ethics requires adherence to the 3Rs principle: Replacement, Reduction, and Refinement. CPCSEA approval is needed for animal experiments in India."},
	{Keyword: "food safety ethics", Response: "Food safety ethics involves transparency about ingredients, additives, preservation methods, and potential allergens. All claims must be backed by scientific evidence."},
	{Keyword: "research ethics", Response: "Research ethics includes honest reporting, proper attribution, data integrity, declaring conflicts of interest, and respecting intellectual property rights."},
	{Keyword: "institutional ethics committee", Response: "An Institutional Ethics Committee (IEC) must review all research involving human subjects, ensuring protection of rights, safety, and well-being of participants."},
}

var defaultBase = func() *Base {
	b, err := NewBase(defaultEntries)
	if err != nil {
		panic(err)
	}
	return b
}()

// Default returns the built-in guidance table. The returned Base is shared
// and read-only.
func Default() *Base {
	return defaultBase
}
