package forth

// startupProgram is evaluated against a freshly seeded machine before any
// user input is accepted; it compiles the rest of the system using only the
// primitives. The word `;` is built before it exists by quoting `exit` and
// comma-ing it in; cell 2 is always zero, so compiling a call to it encodes
// a literal push (see `literal` and `:noname`).
const startupProgram = `\ FORTH startup program.
: state 8 ! exit : ; immediate ' exit , 0 state exit : hex 9 ! ; : pwd 10 ;
: h 0 ; : r 1 ; : here h @ ; : [ immediate 0 state ; : ] 1 state ;
: :noname immediate here 2 , ] ; : if immediate ' jz , here 0 , ;
: else immediate ' j , here 0 , swap dup here swap - swap ! ;
: then immediate dup here swap - swap ! ; : 2dup over over ;
: begin immediate here ; : until immediate ' jz , here - , ;
: 0= 0 = ; : 1+ 1 + ; : 1- 1 - ; : ')' 41 ; : tab 9 emit ; : cr 10 emit ;
: .( key drop begin key dup ')' = if drop exit then emit 0 until ;
: line dup . tab dup 4 + swap begin dup @ . tab 1+ 2dup = until drop ;
: literal 2 , , ; : size [ 11 @ literal ] ;
: list swap begin line cr 2dup < until ; : allot here + h ! ;
: words pwd @ begin dup dup 1 + @ 8 rshift 255 and - size * print tab @ dup 32 < until drop cr ;
: tuck swap over ; : nip swap drop ; : rot >r swap r> swap ;
: -rot rot rot ; : ? 0= if [ find \ , ] then ; : :: [ find : , ] ;
`
