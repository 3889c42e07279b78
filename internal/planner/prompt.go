package planner

// decidePrompt asks for a forced-choice decomposition decision.
const decidePrompt = `Does the following request require being broken down into multiple sequential tasks, or can it be handled as a single step?

Request:
%s

Answer YES if it needs multiple tasks, NO if a single step is enough. Answer with EXACTLY one word: YES or NO.`

// taskListPrompt asks for an ordered task title list.
const taskListPrompt = `Break this request into a short ordered list of concise, sequential, actionable tasks. Each task should be independently completable and verifiable.

Request:
%s

Return ONLY a numbered list, one task per line, like:
1. First task
2. Second task

Keep titles short (under 12 words). Do not include explanations, headers, or any other text. If the request does not need to be broken down, return nothing.`
