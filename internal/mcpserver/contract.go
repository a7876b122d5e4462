package mcpserver

// UsageGuide explains the frame model and tool arguments to MCP clients.
const UsageGuide = `# timer usage guide

timer records frames: intervals of work on a project with optional tags.
At most one frame is open at a time.

## Tools

- ` + "`timer_status`" + `: the open frame, or "Not tracking".
- ` + "`timer_start`" + `: open a frame. ` + "`project`" + ` is required; ` + "`tags`" + ` is a
  space separated list, a leading "+" on each tag is optional.
- ` + "`timer_stop`" + `: close the open frame.
- ` + "`timer_log`" + `: frames newest first.
- ` + "`timer_report`" + `: total durations grouped by project (default) or tag.

## Date windows

` + "`timer_log`" + ` and ` + "`timer_report`" + ` accept ` + "`from`" + ` and ` + "`to`" + ` as YYYY-MM-DD.
With neither the window is today; with one it is that single day; with both
it runs from the start of ` + "`from`" + ` to the end of ` + "`to`" + ` (no reordering, so an
inverted window is empty). ` + "`all: true`" + ` ignores the window.

## Reports

Grouping by tag credits a frame's full duration to each of its tags, so tag
totals can exceed the tracked total. Frames without tags land in "(untagged)".
`
