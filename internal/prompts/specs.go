package prompts

const translateSpec = `Respond with a JSON object matching this exact structure:

{
  "html": "<complete HTML document>"
}

Field constraints:
- html: A complete HTML5 document for this single page. It must contain
  exactly one <html> element with a lang attribute for {{.Language}}, one
  <head> with a <meta charset="utf-8"> declaration and a <title>, and one
  <body>. Put all CSS in <style> elements inside <head>. Every id
  attribute must be unique and every block element must be closed.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Do not reference external stylesheets, scripts, fonts, or images
- Translate exactly one page per response`

const critiqueSpec = `Respond with a JSON object matching this exact structure:

{
  "need_correction": false,
  "reasoning": "<explanation>"
}

Field constraints:
- need_correction: true only when the rendered translation has at least
  one concrete defect that warrants another revision.
- reasoning: When need_correction is true, a numbered list of each defect
  and the fix it requires. When false, a one-sentence confirmation.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Judge only the page shown; do not speculate about other pages`

var specs = map[Stage]string{
	StageTranslate: translateSpec,
	StageCritique:  critiqueSpec,
}
