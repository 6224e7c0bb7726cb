// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/iconctl/internal/meta"
)

const bashCompletionScript = `# bash completion for iconctl
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_iconctl()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "apply get ls serve completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local global="--base -b --timeout --retries --region --profile --tldr"
    local output="--attrs -a --color -c --filter -f --output -o --sort -s --titles -t"

    case "$cmd" in
        apply)
            local opts="$global --target --dir -d"
            ;;
        get)
            local opts="$global"
            ;;
        ls)
            local opts="$global $output --schema"
            ;;
        serve)
            local opts="$global --listen -l --max-age"
            ;;
        completion)
            local opts="bash zsh"
            COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$global"
            ;;
    esac

    case "$prev" in
        --output|-o)
            COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
            return 0
            ;;
        --dir|-d)
            COMPREPLY=( $(compgen -o dirnames -- "$cur") )
            return 0
            ;;
        --target)
            COMPREPLY=( $(compgen -f -- "$cur") )
            return 0
            ;;
    esac

    if [[ "$cur" == -* ]]; then
        COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    fi
    return 0
}

complete -F _iconctl iconctl
`

const zshCompletionScript = `#compdef iconctl

_iconctl() {
  local -a cmds
  cmds=(
    'apply:write icons into files'
    'get:print icon markup'
    'ls:resolve icons and list the cache'
    'serve:serve icons over HTTP'
    'completion:generate shell completion script'
  )

  local -a global
  global=(
  '(-b --base)'{-b,--base}'[icon location prefix]:base'
  '--timeout[per request fetch timeout]:duration'
  '--retries[extra fetch attempts]:retries'
  '--region[AWS region]:region'
  '--profile[AWS profile]:profile'
  '--tldr[show tldr page]'
  )

  local -a output
  output=(
  '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs'
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
  '(-t --titles)'{-t,--titles}'[show titles]'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'iconctl commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    apply)
      _arguments -C \
        $global \
        '--target[file to replace]:file:_files' \
        '(-d --dir)'{-d,--dir}'[output directory]:dir:_directories' \
        '*:icon name'
      ;;
    get)
      _arguments -C $global '*:icon name'
      ;;
    ls)
      _arguments -C \
        $global \
        $output \
        '--schema[dump schema]' \
        '*:icon name'
      ;;
    serve)
      _arguments -C \
        $global \
        '(-l --listen)'{-l,--listen}'[listen address]:address' \
        '--max-age[Cache-Control max-age]:seconds' \
        '*:icon name'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $global
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _iconctl iconctl
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	w := Stdout(cmd)
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	switch shell {
	case "bash":
		fmt.Fprint(w, bashCompletionScript)
	case "zsh":
		fmt.Fprint(w, zshCompletionScript)
	case "":
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		if strings.HasSuffix(sh, "zsh") {
			fmt.Fprint(w, zshCompletionScript)
		} else if strings.HasSuffix(sh, "bash") {
			fmt.Fprint(w, bashCompletionScript)
		} else {
			fmt.Fprintln(Stderr(cmd), "usage: iconctl completion [bash|zsh]")
		}
	default:
		return fmt.Errorf("unsupported shell: %s", shell)
	}
	return nil
}

func CompletionCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "iconctl completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
