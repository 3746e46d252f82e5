package command

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/staranto/evectl/internal/meta"
)

const bashCompletionScript = `# bash completion for evectl
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_evectl()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "alliance cache constellation corp industry orders prices regions search station structure system type completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local common="--attrs -a --color -c --filter -f --output -o --sort -s --titles -t --tldr"
    local cachef="--cache-level --cache-dir --log-level"
    local esif="--esi-url --timeout --token --user-agent"

    case "$cmd" in
        orders)
            local opts="$common $cachef $esif --type"
            ;;
        search)
            local opts="$common $cachef $esif --categories --character --strict"
            ;;
        cache)
            if [[ ${COMP_CWORD} -eq 2 ]]; then
                COMPREPLY=( $(compgen -W "ls purge path" -- "$cur") )
                return 0
            fi
            local opts="$common --cache-dir --hours"
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common $cachef $esif"
            ;;
    esac

    case "$prev" in
        --output|-o)
            COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
            return 0
            ;;
        --cache-level)
            COMPREPLY=( $(compgen -W "full memory disabled" -- "$cur") )
            return 0
            ;;
        --type)
            COMPREPLY=( $(compgen -W "buy sell" -- "$cur") )
            return 0
            ;;
        --strict)
            COMPREPLY=( $(compgen -W "true false" -- "$cur") )
            return 0
            ;;
    esac

    if [[ "$cur" == -* ]]; then
        COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    fi
    return 0
}

complete -F _evectl evectl
`

const zshCompletionScript = `#compdef evectl

_evectl() {
  local -a cmds
  cmds=(
    'alliance:alliance query'
    'cache:cache housekeeping'
    'constellation:constellation query'
    'corp:corporation query'
    'industry:industry cost index query'
    'orders:regional market order query'
    'prices:market price query'
    'regions:region query'
    'search:character search'
    'station:NPC station query'
    'structure:player structure query'
    'system:solar system query'
    'type:item type query'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs'
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
  '(-t --titles)'{-t,--titles}'[show titles]'
  '--tldr[show tldr page]'
  '--cache-level[cache level]:level:(full memory disabled)'
  '--cache-dir[cache directory]:directory:_directories'
  '--log-level[log level]:level:(debug info warn error fatal)'
  '--esi-url[ESI base URL]:url'
  '--timeout[request timeout]:duration'
  '--token[bearer token]:token'
  '--user-agent[User-Agent]:agent'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'evectl commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    orders)
      _arguments -C \
        $common \
        '--type[order type]:type:(buy sell)' \
        ':region id'
      ;;
    search)
      _arguments -C \
        $common \
        '--categories[search categories]:categories' \
        '--character[character id]:id' \
        '--strict[exact matches only]:strict:(true false)' \
        '*:text'
      ;;
    cache)
      _arguments -C \
        '1: :((ls purge path))' \
        '--cache-dir[cache directory]:directory:_directories' \
        '--hours[older than hours]:hours' \
        '*:dataset'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $common '*:id'
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _evectl evectl
`

var completionScripts = map[string]string{
	"bash": bashCompletionScript,
	"zsh":  zshCompletionScript,
}

// CompletionCommandAction writes the completion script for the shell named
// by the first argument, or by $SHELL when there is none.
func CompletionCommandAction(_ context.Context, cmd *cli.Command) error {
	shell := cmd.Args().First()
	if shell == "" {
		shell = filepath.Base(os.Getenv("SHELL"))
	}

	script, ok := completionScripts[shell]
	if !ok {
		return fmt.Errorf("unsupported shell %q, usage: evectl completion [bash|zsh]", shell)
	}

	_, err := fmt.Fprint(Writer(cmd), script)
	return err
}

func CompletionCommandBuilder(_ *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "evectl completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
