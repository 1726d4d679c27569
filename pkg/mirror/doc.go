/*
The mirror package implements the reconciliation pass that keeps a replica
folder in step with a source folder.

A pass has two phases that always run in this order:
1) Additions -- The source tree is walked top-down. Folders that are missing
   from the replica are created, and files that are missing from the replica
   are copied along with their mode and modification time.
2) Deletions -- The replica tree is walked top-down. Folders and files that no
   longer exist in the source are removed. A removed folder is not descended
   into.

Entries are matched by their path relative to the two roots. Only existence
is compared: a replica file that already exists is never re-copied, even if
its contents differ from the source. An entry of the wrong kind (a file where
the source has a folder, or the reverse) is left alone by the first phase and
removed by the second, so the next pass creates the right kind.

Both walks use an explicit stack of pending folders rather than recursion,
and check for cancellation between folders.
*/
package mirror
