package analysis

// Stage prompts. All JSON-returning prompts tolerate fenced responses;
// parsing degrades rather than failing the stage.

const hypothesesPrompt = `You are analyzing a document published by %s for greenwashing risk.

Propose exactly four distinct analytic approaches for investigating whether the document greenwashes. For each approach describe:
- the methodology
- the evidence in the document it would target
- how plausible external verification of its findings would be

Respond with a JSON list of four objects, each with keys "methodology", "target_evidence", "verification_plausibility".`

const evaluatePrompt = `You proposed these analytic approaches for a greenwashing investigation:

%s

Select the three most promising approaches, judged by how falsifiable their findings would be and how well they cover distinct greenwashing patterns.

Respond with a JSON list containing the three selected approaches, strongest first.`

const hypothesisAnalysisPrompt = `You are investigating a document published by %s for greenwashing, following this analytic approach:

%s

Relevant document excerpts:
%s

Analyze the excerpts under this approach. Describe concretely what the document claims, what substantiation it offers, and where the gap between the two lies. Plain prose, no headings.`

const claimsPrompt = `Below is an analysis of a document published by %s.

%s

Extract the specific, falsifiable environmental claims the document makes. For each claim provide:
- "quotation": the claim as stated (verbatim where possible)
- "explanation": why this claim matters for greenwashing risk
- "likelihood_score": integer 0-10, how likely the claim is misleading
- "verification_required": "true" if the claim should be checked against external sources, else "false"
- "verification_method": how to verify it
- "data_needed": what data would settle it

Respond with a JSON list of claim objects.`

const toolSelectPrompt = `A claim from a document published by %s needs external verification.

Claim: %s
Why it matters: %s

Available verification tools:
- news: recent news coverage of the company
- registry: the open company-metrics registry of independently reported ESG data

Which tools should verify this claim? Respond with a comma-separated list drawn from: news, registry. Respond with "none" if neither tool can help.`

const synthesisPrompt = `Write the final greenwashing assessment for a document published by %s. Write in the language with ISO code "%s".

Document analysis:
%s

Claim validation results:
%s

Risk metrics (0-100 per dimension, overall 0-10):
%s

Structure the report as prose with these parts:
1. Executive summary of the greenwashing risk
2. For each validated claim: a revised explanation and likelihood in light of the validation results
3. The likelihood of each risk dimension materializing
4. Recommendations for stakeholders reading the document
5. Open risk areas that could not be verified`

const legacyMetricsPrompt = `Score the following analysis of a corporate document for greenwashing across five categories, each 0-10:
- Vague or unsubstantiated claims
- Lack of specific metrics or targets
- Misleading terminology
- Cherry-picked data
- Absence of third-party verification

%s

Respond with a JSON object keyed by category name, each value an object with "score" (0-10) and "reason". Include "overall_greenwashing_score" with "score" (0-10) and "reasoning".`

const fallbackAnalysisPrompt = `You are assessing a document published by %s for greenwashing risk.

Document excerpts:
%s

In plain prose, describe the environmental claims the document makes, the substantiation offered for them, and the greenwashing patterns you observe.`
