package orchestrator

// planPrompt asks for an executable action plan for one task.
const planPrompt = `You are executing one task from a larger request.

Original request:
%s

Current task:
%s

Produce a short plan of concrete actions that completes ONLY the current task.

Allowed actions: read_file, write_file, edit_file, list_dir, glob, grep, shell, fetch_url.

Respond with ONLY a JSON object in this exact shape:
{
  "rationale": "one sentence on the approach",
  "steps": [
    {"action": "shell", "args": {"command": "..."}, "description": "what this step does"}
  ]
}

Use at most %d steps. Prefer the fewest steps that complete the task. Do not include any text outside the JSON object.`

// verifyPlanPrompt asks for a shell-only verification plan when the project
// declares no verification scripts.
const verifyPlanPrompt = `A task was just executed in a project that declares no build or test scripts.

Task:
%s

What was done:
%s

Propose up to %d shell commands that check whether the task outcome is actually in place (files exist, contents look right, commands succeed). Checks must be read-only.

Respond with ONLY a JSON object:
{
  "steps": [
    {"action": "shell", "args": {"command": "..."}, "description": "what this verifies"}
  ]
}

Only the "shell" action is allowed here. Do not include any text outside the JSON object.`

// repairPrompt asks for a corrective plan after verification failed.
const repairPrompt = `A task was executed but verification failed.

Current task:
%s

What was done:
%s

Verification output:
%s

Produce a short plan that fixes the failure. Fix the underlying problem; never weaken or skip the checks themselves.

Allowed actions: read_file, write_file, edit_file, list_dir, glob, grep, shell, fetch_url.

Respond with ONLY a JSON object:
{
  "rationale": "one sentence on the fix",
  "steps": [
    {"action": "shell", "args": {"command": "..."}, "description": "what this step does"}
  ]
}

Use at most %d steps. Do not include any text outside the JSON object.`
